package erp

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Credentials identify one tenant against its ERP instance. Immutable,
// supplied by tenant configuration.
type Credentials struct {
	Endpoint string
	Database string
	Username string
	APIKey   string
}

// Session is a pure value produced by a successful authentication. The
// remote protocol is stateless per call, so holding a Session keeps no
// connection open; every call carries the uid and API key in band.
type Session struct {
	Credentials Credentials
	UID         int
	CompanyID   int
	CompanyName string
}

// RawRecord is an untyped ERP row. Field shapes vary per model and per
// requested field set; decoding is the mapper's job.
type RawRecord map[string]any

// SearchOptions bound a single query. A zero Limit falls back to the
// client's default upper bound.
type SearchOptions struct {
	Limit   int
	Order   string
	Context map[string]any
}

type Client interface {
	Authenticate(ctx context.Context, creds Credentials) (*Session, error)
	ResolveCompany(ctx context.Context, session *Session, name string) error
	SearchRead(ctx context.Context, session *Session, model string, domain []Expression, fields []string, opts SearchOptions) ([]RawRecord, error)
}

type client struct {
	transport    Transport
	defaultLimit int
}

func NewClient(transport Transport, defaultLimit int) Client {
	if defaultLimit <= 0 {
		defaultLimit = 2000
	}
	return &client{
		transport:    transport,
		defaultLimit: defaultLimit,
	}
}

// Authenticate calls the ERP's common.authenticate. A falsy or non-positive
// identity means invalid credentials. Never retried: credentials are static
// tenant configuration and retrying cannot change the outcome.
func (c *client) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	args := []any{creds.Database, creds.Username, creds.APIKey, map[string]any{}}

	result, err := c.transport.Call(ctx, creds.Endpoint, "common", "authenticate", args)
	if err != nil {
		return nil, &AuthError{Database: creds.Database, Username: creds.Username, Cause: err}
	}

	uid, ok := decodeUID(result)
	if !ok || uid <= 0 {
		return nil, &AuthError{Database: creds.Database, Username: creds.Username}
	}

	log.Debugf("Authenticated %q on %q as uid %d", creds.Username, creds.Database, uid)
	return &Session{Credentials: creds, UID: uid}, nil
}

// ResolveCompany looks up a company by name and pins the session to it.
// Zero matches leaves the session unscoped; unscoped queries see every
// company's records.
func (c *client) ResolveCompany(ctx context.Context, session *Session, name string) error {
	if name == "" {
		return nil
	}

	rows, err := c.SearchRead(ctx, session, "res.company",
		[]Expression{Clause{Field: "name", Op: "ilike", Value: name}},
		[]string{"id", "name"},
		SearchOptions{Limit: 1},
	)
	if err != nil {
		return fmt.Errorf("failed to resolve company %q: %w", name, err)
	}

	if len(rows) == 0 {
		log.Warnf("Company filter %q matched no company, session stays unscoped", name)
		return nil
	}

	if id, ok := rows[0]["id"].(float64); ok {
		session.CompanyID = int(id)
	}
	if n, ok := rows[0]["name"].(string); ok {
		session.CompanyName = n
	}

	log.Debugf("Session scoped to company %d (%s)", session.CompanyID, session.CompanyName)
	return nil
}

// SearchRead issues one object.execute_kw search_read call. Any failure,
// transport-level or remote-side, comes back as a QueryError; this call
// never retries or substitutes data, fallback is the caller's policy.
func (c *client) SearchRead(ctx context.Context, session *Session, model string, domain []Expression, fields []string, opts SearchOptions) ([]RawRecord, error) {
	flat := Flatten(domain...)

	limit := opts.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}

	kwargs := map[string]any{
		"fields": fields,
		"limit":  limit,
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}
	if len(opts.Context) > 0 {
		kwargs["context"] = opts.Context
	}

	creds := session.Credentials
	args := []any{
		creds.Database, session.UID, creds.APIKey,
		model, "search_read",
		[]any{flat},
		kwargs,
	}

	result, err := c.transport.Call(ctx, creds.Endpoint, "object", "execute_kw", args)
	if err != nil {
		return nil, &QueryError{Model: model, Domain: flat, Cause: err}
	}

	var records []RawRecord
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, &QueryError{Model: model, Domain: flat, Cause: fmt.Errorf("failed to decode result: %w", err)}
	}

	log.Debugf("search_read %s returned %d records", model, len(records))
	return records, nil
}

// decodeUID handles the two shapes the ERP returns: a number on success and
// boolean false on bad credentials.
func decodeUID(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil && !b {
		return 0, true
	}
	return 0, false
}
