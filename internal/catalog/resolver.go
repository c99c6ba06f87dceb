package catalog

import (
	"context"

	"lemonbi/storefront/internal/domain"
	"lemonbi/storefront/internal/erp"

	log "github.com/sirupsen/logrus"
)

// Field sets requested from the ERP. The extended fields are tenant-added
// customizations that not every ERP instance carries; the core set is the
// maximal-compatibility fallback.
var (
	coreFields     = []string{"display_name", "list_price", "categ_id", "image_128", "description_sale"}
	extendedFields = []string{"qty_available", "x_registro_sanitario", "x_laboratorio", "x_principio_activo"}
)

// fetchState enumerates the fallback cascade. Remote category taxonomies
// are free-text-configured per tenant and frequently misconfigured, so the
// cascade trades an extra round trip or two for resilience against a total
// fetch failure that would take down the tenant's whole storefront.
type fetchState int

const (
	// stateScoped: category resolved to an id, hierarchical containment.
	stateScoped fetchState = iota
	// stateNameMatch: unresolved but non-trivial label, substring match on
	// the category display name.
	stateNameMatch
	// stateUnfiltered: no category constraint, saleable/company only.
	stateUnfiltered
	// stateDegraded: maximal-compatibility last resort, template model with
	// the core field set.
	stateDegraded
	// stateDone: cascade exhausted, an empty catalog is the valid answer.
	stateDone
)

func (s fetchState) String() string {
	switch s {
	case stateScoped:
		return "scoped"
	case stateNameMatch:
		return "name-match"
	case stateUnfiltered:
		return "unfiltered"
	case stateDegraded:
		return "degraded"
	default:
		return "done"
	}
}

// nextState is the zero-row relaxation policy, kept as a standalone
// function so the retry behavior is auditable in one place.
func nextState(s fetchState) fetchState {
	switch s {
	case stateScoped, stateNameMatch:
		return stateUnfiltered
	case stateUnfiltered:
		return stateDegraded
	default:
		return stateDone
	}
}

type Resolver struct {
	erp           Searcher
	categories    *CategoryResolver
	limit         int
	fallbackLimit int
}

func NewResolver(searcher Searcher, categories *CategoryResolver, limit, fallbackLimit int) *Resolver {
	if limit <= 0 {
		limit = 500
	}
	if fallbackLimit <= 0 {
		fallbackLimit = 200
	}
	return &Resolver{
		erp:           searcher,
		categories:    categories,
		limit:         limit,
		fallbackLimit: fallbackLimit,
	}
}

// Fetch runs the fallback cascade and returns the raw product records.
// Field-incompatibility faults retry the identical domain with the core
// field set; zero rows relax the category constraint and finally fall back
// to the template model; any other query fault is fatal. Zero rows after
// exhausting every state is success with an empty catalog.
func (r *Resolver) Fetch(ctx context.Context, session *erp.Session, cfg domain.CatalogConfig) ([]erp.RawRecord, error) {
	match := r.categories.Resolve(ctx, session, cfg.CategoryLabel)

	state := stateUnfiltered
	switch {
	case match.Found:
		state = stateScoped
	case !match.NoFilter:
		state = stateNameMatch
	}

	reducedFields := false
	for state != stateDone {
		records, err := r.attempt(ctx, session, cfg, state, match.ID, reducedFields)
		if err != nil {
			if !reducedFields && erp.IsFieldError(err) {
				log.Warnf("ERP rejected extended fields in state %s, retrying with core field set: %v", state, err)
				reducedFields = true
				continue
			}
			return nil, err
		}

		if len(records) == 0 {
			prev := state
			state = nextState(state)
			if state != stateDone {
				log.Warnf("Catalog query in state %s returned no rows, relaxing to %s", prev, state)
			}
			continue
		}

		log.Debugf("Catalog resolved in state %s with %d records", state, len(records))
		return records, nil
	}

	log.Debugf("Catalog cascade exhausted with no rows, returning empty catalog")
	return []erp.RawRecord{}, nil
}

func (r *Resolver) attempt(ctx context.Context, session *erp.Session, cfg domain.CatalogConfig, state fetchState, categoryID int, reducedFields bool) ([]erp.RawRecord, error) {
	filter := []erp.Expression{erp.SaleableOnly()}
	if cfg.CompanyID != 0 {
		filter = append(filter, erp.ScopedToCompany(cfg.CompanyID))
	}

	model := "product.product"
	limit := r.limit
	fields := coreFields
	if !reducedFields {
		fields = append(append([]string{}, coreFields...), extendedFields...)
	}

	switch state {
	case stateScoped:
		filter = append(filter, erp.UnderCategory(categoryID))
	case stateNameMatch:
		filter = append(filter, erp.CategoryNameMatches(cfg.CategoryLabel))
	case stateDegraded:
		model = "product.template"
		limit = r.fallbackLimit
		fields = coreFields
	}

	return r.erp.SearchRead(ctx, session, model, filter, fields, erp.SearchOptions{
		Limit:   limit,
		Context: companyContext(session),
	})
}
