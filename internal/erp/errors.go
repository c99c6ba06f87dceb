package erp

import (
	"errors"
	"fmt"
	"strings"
)

// TransportError covers network failures, non-2xx responses and malformed
// RPC envelopes. The remote was never reached or never answered sensibly.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("erp transport: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RemoteFault is an error raised by the ERP itself and delivered inside a
// well-formed RPC envelope, e.g. an access error or an invalid field name.
type RemoteFault struct {
	Code    int
	Message string
	Detail  string
}

func (e *RemoteFault) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("erp fault: %s (%s)", e.Message, e.Detail)
	}
	return fmt.Sprintf("erp fault: %s", e.Message)
}

// AuthError means the ERP rejected the tenant's credentials or the
// authentication call itself failed. Credentials are static configuration,
// so callers must not retry.
type AuthError struct {
	Database string
	Username string
	Cause    error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("erp authentication failed for %q on %q: %v", e.Username, e.Database, e.Cause)
	}
	return fmt.Sprintf("erp authentication failed for %q on %q: invalid credentials", e.Username, e.Database)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// QueryError wraps any failure of a single search_read call, transport-level
// or remote-side. The flattened domain is kept for diagnostics.
type QueryError struct {
	Model  string
	Domain []any
	Cause  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("erp query on %s failed: %v", e.Model, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsFieldError reports whether err is a query failure the remote attributed
// to an unknown or invalid field, which the catalog cascade may recover from
// by retrying with the core field set. Odoo phrases these as
// "Invalid field 'x' on model 'y'" ValueErrors.
func IsFieldError(err error) bool {
	var fault *RemoteFault
	if !errors.As(err, &fault) {
		return false
	}
	msg := strings.ToLower(fault.Message + " " + fault.Detail)
	return strings.Contains(msg, "invalid field") ||
		strings.Contains(msg, "unknown field") ||
		strings.Contains(msg, "valueerror")
}
