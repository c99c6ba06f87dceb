package service

import (
	"context"
	"errors"
	"time"

	"lemonbi/storefront/internal/catalog"
	"lemonbi/storefront/internal/domain"
	"lemonbi/storefront/internal/erp"
	"lemonbi/storefront/internal/events"
	"lemonbi/storefront/internal/repository"
	"lemonbi/storefront/internal/state"

	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
)

// ErrStoreDisabled means the tenant exists but its storefront is switched
// off, either the whole account or just the store module.
var ErrStoreDisabled = errors.New("storefront is disabled for this tenant")

type Service struct {
	tenants  repository.TenantRepository
	erp      erp.Client
	resolver *catalog.Resolver
	status   state.StatusStore
	events   events.Publisher
}

func NewService(
	tenants repository.TenantRepository,
	erpClient erp.Client,
	resolver *catalog.Resolver,
	status state.StatusStore,
	publisher events.Publisher,
) *Service {
	return &Service{
		tenants:  tenants,
		erp:      erpClient,
		resolver: resolver,
		status:   status,
		events:   publisher,
	}
}

// Storefront returns the tenant's public storefront settings snapshot.
func (s *Service) Storefront(ctx context.Context, code string) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !tenant.Active || !tenant.StoreEnabled {
		return nil, ErrStoreDisabled
	}
	return tenant, nil
}

// Catalog runs one full catalog fetch for a tenant: authenticate, resolve
// the company scope, run the fallback cascade, map and visibility-filter.
// An empty result is success; callers must render it as "no products", not
// as an error.
func (s *Service) Catalog(ctx context.Context, code string) ([]domain.Product, error) {
	tenant, err := s.Storefront(ctx, code)
	if err != nil {
		return nil, err
	}

	session, err := s.erp.Authenticate(ctx, erp.Credentials{
		Endpoint: tenant.ErpURL,
		Database: tenant.ErpDatabase,
		Username: tenant.ErpUsername,
		APIKey:   tenant.ErpAPIKey,
	})
	if err != nil {
		s.recordOutcome(ctx, code, 0, err)
		return nil, err
	}

	if tenant.CompanyFilter != "" {
		// Company scoping narrows visibility; losing it widens the catalog
		// rather than breaking the storefront, so a failed lookup is not
		// fatal.
		if err := s.erp.ResolveCompany(ctx, session, tenant.CompanyFilter); err != nil {
			log.Warnf("Company scope resolution failed for tenant %s: %v", code, err)
		}
	}

	cfg := tenant.CatalogConfig()
	cfg.CompanyID = session.CompanyID

	records, err := s.resolver.Fetch(ctx, session, cfg)
	if err != nil {
		fetchErr := &catalog.FetchError{Tenant: code, Cause: err}
		s.recordOutcome(ctx, code, 0, fetchErr)
		return nil, fetchErr
	}

	products := catalog.ApplyVisibility(catalog.MapProducts(records), tenant.Visibility())

	s.recordOutcome(ctx, code, len(products), nil)
	log.Infof("Catalog for tenant %s resolved to %d visible products", code, len(products))
	return products, nil
}

// Tenants lists every active tenant for the admin surface.
func (s *Service) Tenants(ctx context.Context) ([]*domain.Tenant, error) {
	return s.tenants.ListActive(ctx)
}

// FetchStatus returns the last recorded fetch outcome for a tenant, or nil
// when none was recorded yet.
func (s *Service) FetchStatus(ctx context.Context, code string) (*state.FetchStatus, error) {
	if _, err := s.tenants.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.status.Get(ctx, code)
}

// TenantCheck is the result of one connectivity probe.
type TenantCheck struct {
	Code  string `json:"code"`
	OK    bool   `json:"ok"`
	UID   int    `json:"uid,omitempty"`
	Error string `json:"error,omitempty"`
}

// CheckAll authenticates against every active tenant's ERP concurrently.
// A failed probe is a result, not an error; only listing tenants can fail.
func (s *Service) CheckAll(ctx context.Context) ([]TenantCheck, error) {
	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	checks := make([]TenantCheck, len(tenants))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, tenant := range tenants {
		i, tenant := i, tenant
		g.Go(func() error {
			check := TenantCheck{Code: tenant.Code}

			session, err := s.erp.Authenticate(ctx, erp.Credentials{
				Endpoint: tenant.ErpURL,
				Database: tenant.ErpDatabase,
				Username: tenant.ErpUsername,
				APIKey:   tenant.ErpAPIKey,
			})
			if err != nil {
				check.Error = err.Error()
				log.Warnf("Connectivity check failed for tenant %s: %v", tenant.Code, err)
			} else {
				check.OK = true
				check.UID = session.UID
			}

			checks[i] = check
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return checks, nil
}

// recordOutcome persists the fetch status and publishes the activity event.
// Both are observability side channels; their failures are logged, never
// surfaced to the storefront.
func (s *Service) recordOutcome(ctx context.Context, code string, products int, fetchErr error) {
	status := state.FetchStatus{
		Tenant:    code,
		FetchedAt: time.Now().UTC(),
		OK:        fetchErr == nil,
		Products:  products,
	}
	event := events.Event{
		Type:     events.TypeCatalogFetched,
		Tenant:   code,
		At:       status.FetchedAt,
		Products: products,
	}
	if fetchErr != nil {
		status.Error = fetchErr.Error()
		event.Type = events.TypeCatalogFetchFailed
		event.Error = fetchErr.Error()
		event.Products = 0
	}

	if err := s.status.Record(ctx, status); err != nil {
		log.Errorf("Failed to record fetch status for tenant %s: %v", code, err)
	}
	if _, err := s.events.Publish(ctx, event); err != nil {
		log.Errorf("Failed to publish fetch event for tenant %s: %v", code, err)
	}
}
