package catalog

import (
	"context"
	"strings"

	"lemonbi/storefront/internal/erp"

	log "github.com/sirupsen/logrus"
)

// Searcher is the one ERP operation the resolution engine needs. Satisfied
// by erp.Client; tests inject fakes.
type Searcher interface {
	SearchRead(ctx context.Context, session *erp.Session, model string, domain []erp.Expression, fields []string, opts erp.SearchOptions) ([]erp.RawRecord, error)
}

// Labels that mean "show the whole catalog, do not filter by category".
// TODAS and CATALOGO are the Spanish forms tenant dashboards historically
// stored.
var noFilterLabels = map[string]struct{}{
	"":         {},
	"ALL":      {},
	"CATALOG":  {},
	"TODAS":    {},
	"CATALOGO": {},
}

// CategoryMatch is the outcome of resolving a free-text category label.
type CategoryMatch struct {
	// NoFilter means the label asked for the full catalog.
	NoFilter bool
	// Found is true when the label resolved to a concrete category id.
	Found bool
	ID    int
}

type CategoryResolver struct {
	erp Searcher
}

func NewCategoryResolver(searcher Searcher) *CategoryResolver {
	return &CategoryResolver{erp: searcher}
}

// Resolve maps a tenant's free-text category label to a category id via a
// case-insensitive substring lookup. It never fails the catalog fetch on
// its own: lookup faults and zero matches both come back as "not found",
// and the cascade decides what to do with that.
func (r *CategoryResolver) Resolve(ctx context.Context, session *erp.Session, label string) CategoryMatch {
	label = strings.TrimSpace(label)
	if _, ok := noFilterLabels[strings.ToUpper(label)]; ok {
		return CategoryMatch{NoFilter: true}
	}

	rows, err := r.erp.SearchRead(ctx, session, "product.category",
		[]erp.Expression{erp.Clause{Field: "name", Op: "ilike", Value: label}},
		[]string{"id"},
		erp.SearchOptions{Limit: 1, Context: companyContext(session)},
	)
	if err != nil {
		log.Warnf("Category lookup for %q failed, continuing without category id: %v", label, err)
		return CategoryMatch{}
	}

	if len(rows) == 0 {
		log.Debugf("Category label %q matched no remote category", label)
		return CategoryMatch{}
	}

	id, ok := rows[0]["id"].(float64)
	if !ok {
		log.Warnf("Category lookup for %q returned a record without a numeric id", label)
		return CategoryMatch{}
	}

	return CategoryMatch{Found: true, ID: int(id)}
}

// companyContext builds the multi-company query context for a session, or
// nil when the session is unscoped.
func companyContext(session *erp.Session) map[string]any {
	if session == nil || session.CompanyID == 0 {
		return nil
	}
	return map[string]any{
		"allowed_company_ids": []int{session.CompanyID},
		"company_id":          session.CompanyID,
	}
}
