package catalog

import "fmt"

// FetchError is the terminal failure of a catalog fetch, raised only after
// the fallback cascade is out of options. Zero matching products is never a
// FetchError; an empty catalog is a valid outcome.
type FetchError struct {
	Tenant string
	Cause  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog fetch for tenant %q failed: %v", e.Tenant, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
