package catalog

import (
	"context"
	"testing"

	"lemonbi/storefront/internal/domain"
	"lemonbi/storefront/internal/erp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(fake *fakeSearcher) *Resolver {
	return NewResolver(fake, NewCategoryResolver(fake), 500, 200)
}

func fieldFault(model string) error {
	return &erp.QueryError{
		Model: model,
		Cause: &erp.RemoteFault{
			Message: "Odoo Server Error",
			Detail:  "Invalid field 'x_registro_sanitario' on model 'product.product'",
		},
	}
}

func hasClause(domain []any, clause []any) bool {
	for _, term := range domain {
		tuple, ok := term.([]any)
		if !ok || len(tuple) != 3 {
			continue
		}
		if tuple[0] == clause[0] && tuple[1] == clause[1] && tuple[2] == clause[2] {
			return true
		}
	}
	return false
}

func TestResolverScoped(t *testing.T) {
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		switch call.model {
		case "product.category":
			return []erp.RawRecord{{"id": float64(42)}}, nil
		case "product.product":
			return []erp.RawRecord{{"id": float64(7), "display_name": "Ibuprofeno 400mg"}}, nil
		default:
			t.Fatalf("unexpected model %s", call.model)
			return nil, nil
		}
	}}
	resolver := newTestResolver(fake)

	records, err := resolver.Fetch(context.Background(), testSession(), domain.CatalogConfig{CategoryLabel: "Analgesicos"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, fake.calls, 2)

	productCall := fake.calls[1]
	assert.True(t, hasClause(productCall.domain, []any{"sale_ok", "=", true}))
	assert.True(t, hasClause(productCall.domain, []any{"categ_id", "child_of", 42}))
	assert.Contains(t, productCall.fields, "x_registro_sanitario")
	assert.Equal(t, 500, productCall.opts.Limit)
}

func TestResolverRelaxesToUnfilteredOnZeroRows(t *testing.T) {
	// Category resolves to id 42 but the hierarchy query finds nothing,
	// e.g. the category was renamed after being referenced by the tenant.
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		switch {
		case call.model == "product.category":
			return []erp.RawRecord{{"id": float64(42)}}, nil
		case hasClause(call.domain, []any{"categ_id", "child_of", 42}):
			return []erp.RawRecord{}, nil
		default:
			return []erp.RawRecord{
				{"id": float64(1), "display_name": "Amoxicilina 500mg"},
				{"id": float64(2), "display_name": "Paracetamol 500mg"},
			}, nil
		}
	}}
	resolver := newTestResolver(fake)

	records, err := resolver.Fetch(context.Background(), testSession(), domain.CatalogConfig{CategoryLabel: "Analgesicos"})

	require.NoError(t, err)
	assert.Len(t, records, 2)

	// One category lookup, one scoped attempt, one unfiltered attempt.
	require.Len(t, fake.calls, 3)
	unfiltered := fake.calls[2]
	assert.Equal(t, "product.product", unfiltered.model)
	assert.True(t, hasClause(unfiltered.domain, []any{"sale_ok", "=", true}))
	assert.False(t, hasClause(unfiltered.domain, []any{"categ_id", "child_of", 42}))
}

func TestResolverDegradesFieldsOnFieldFault(t *testing.T) {
	productCalls := 0
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		switch call.model {
		case "product.category":
			return []erp.RawRecord{{"id": float64(42)}}, nil
		case "product.product":
			productCalls++
			if productCalls == 1 {
				return nil, fieldFault(call.model)
			}
			return []erp.RawRecord{{"id": float64(9)}}, nil
		default:
			t.Fatalf("unexpected model %s", call.model)
			return nil, nil
		}
	}}
	resolver := newTestResolver(fake)

	records, err := resolver.Fetch(context.Background(), testSession(), domain.CatalogConfig{CategoryLabel: "Analgesicos"})

	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Category resolution ran once; the retry reused the identical domain
	// with the reduced core field set.
	require.Len(t, fake.calls, 3)
	first, retry := fake.calls[1], fake.calls[2]
	assert.Equal(t, first.domain, retry.domain)
	assert.Contains(t, first.fields, "x_registro_sanitario")
	assert.Equal(t, coreFields, retry.fields)
}

func TestResolverNameMatchWhenCategoryUnresolved(t *testing.T) {
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		if call.model == "product.category" {
			return []erp.RawRecord{}, nil
		}
		return []erp.RawRecord{{"id": float64(4)}}, nil
	}}
	resolver := newTestResolver(fake)

	records, err := resolver.Fetch(context.Background(), testSession(), domain.CatalogConfig{CategoryLabel: "Vitaminas"})

	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.Len(t, fake.calls, 2)
	assert.True(t, hasClause(fake.calls[1].domain, []any{"categ_id.name", "ilike", "Vitaminas"}))
}

func TestResolverEmptyCatalogIsSuccess(t *testing.T) {
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		return []erp.RawRecord{}, nil
	}}
	resolver := newTestResolver(fake)

	records, err := resolver.Fetch(context.Background(), testSession(), domain.CatalogConfig{CategoryLabel: "Vitaminas"})

	require.NoError(t, err)
	assert.Empty(t, records)

	// Cascade ran out: name match, unfiltered, then the template-model
	// last resort with the core field set and the reduced limit.
	last := fake.calls[len(fake.calls)-1]
	assert.Equal(t, "product.template", last.model)
	assert.Equal(t, coreFields, last.fields)
	assert.Equal(t, 200, last.opts.Limit)
}

func TestResolverFatalOnNonFieldFault(t *testing.T) {
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		if call.model == "product.category" {
			return []erp.RawRecord{{"id": float64(42)}}, nil
		}
		return nil, &erp.QueryError{
			Model: call.model,
			Cause: &erp.RemoteFault{Message: "Access Denied", Detail: "odoo.exceptions.AccessError"},
		}
	}}
	resolver := newTestResolver(fake)

	records, err := resolver.Fetch(context.Background(), testSession(), domain.CatalogConfig{CategoryLabel: "Analgesicos"})

	assert.Nil(t, records)

	var qe *erp.QueryError
	require.ErrorAs(t, err, &qe)
	// Fatal: no retries past the failed attempt.
	assert.Len(t, fake.calls, 2)
}

func TestResolverCompanyScope(t *testing.T) {
	fake := &fakeSearcher{respond: func(call searchCall) ([]erp.RawRecord, error) {
		return []erp.RawRecord{{"id": float64(1)}}, nil
	}}
	resolver := newTestResolver(fake)

	session := testSession()
	session.CompanyID = 5

	_, err := resolver.Fetch(context.Background(), session, domain.CatalogConfig{CategoryLabel: "", CompanyID: 5})

	require.NoError(t, err)
	require.Len(t, fake.calls, 1)

	call := fake.calls[0]
	assert.Contains(t, call.domain, "|")
	assert.True(t, hasClause(call.domain, []any{"company_id", "=", false}))
	assert.True(t, hasClause(call.domain, []any{"company_id", "=", 5}))
	assert.Equal(t, map[string]any{
		"allowed_company_ids": []int{5},
		"company_id":          5,
	}, call.opts.Context)
}
