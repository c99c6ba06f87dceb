package catalog

import (
	"context"
	"testing"

	"lemonbi/storefront/internal/erp"

	"github.com/stretchr/testify/assert"
)

// searchCall records one query with its domain already flattened, which is
// what assertions care about.
type searchCall struct {
	model  string
	domain []any
	fields []string
	opts   erp.SearchOptions
}

type fakeSearcher struct {
	calls   []searchCall
	respond func(call searchCall) ([]erp.RawRecord, error)
}

func (f *fakeSearcher) SearchRead(_ context.Context, _ *erp.Session, model string, domain []erp.Expression, fields []string, opts erp.SearchOptions) ([]erp.RawRecord, error) {
	call := searchCall{model: model, domain: erp.Flatten(domain...), fields: fields, opts: opts}
	f.calls = append(f.calls, call)
	return f.respond(call)
}

func testSession() *erp.Session {
	return &erp.Session{
		Credentials: erp.Credentials{Endpoint: "http://erp.local", Database: "prod", Username: "u", APIKey: "k"},
		UID:         17,
	}
}

func TestCategoryResolverSentinels(t *testing.T) {
	fake := &fakeSearcher{respond: func(searchCall) ([]erp.RawRecord, error) {
		t.Fatal("sentinel labels must not hit the ERP")
		return nil, nil
	}}
	resolver := NewCategoryResolver(fake)

	for _, label := range []string{"", "ALL", "all", "Catalog", "CATALOG", "Todas", "CATALOGO", "  catalogo  "} {
		match := resolver.Resolve(context.Background(), testSession(), label)
		assert.True(t, match.NoFilter, "label %q should mean no filter", label)
		assert.False(t, match.Found)
	}
}

func TestCategoryResolverLookup(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
			assert.Equal(t, "product.category", call.model)
			assert.Equal(t, []any{[]any{"name", "ilike", "Analgesicos"}}, call.domain)
			return []erp.RawRecord{{"id": float64(42)}, {"id": float64(43)}}, nil
		}}
		resolver := NewCategoryResolver(fake)

		match := resolver.Resolve(context.Background(), testSession(), "Analgesicos")

		assert.True(t, match.Found)
		assert.Equal(t, 42, match.ID)
	})

	t.Run("zero matches is not found, not an error", func(t *testing.T) {
		fake := &fakeSearcher{respond: func(searchCall) ([]erp.RawRecord, error) {
			return []erp.RawRecord{}, nil
		}}
		resolver := NewCategoryResolver(fake)

		match := resolver.Resolve(context.Background(), testSession(), "Inexistente")

		assert.False(t, match.Found)
		assert.False(t, match.NoFilter)
	})

	t.Run("lookup fault degrades to not found", func(t *testing.T) {
		fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
			return nil, &erp.QueryError{Model: call.model, Cause: &erp.RemoteFault{Message: "server busy"}}
		}}
		resolver := NewCategoryResolver(fake)

		match := resolver.Resolve(context.Background(), testSession(), "Analgesicos")

		assert.False(t, match.Found)
		assert.False(t, match.NoFilter)
	})
}
