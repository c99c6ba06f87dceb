package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lemonbi/storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTenantNotFound is returned when no tenant row exists for a code.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository is a read-only view of tenant configuration. The engine
// never writes tenant rows; the dashboard owns them.
type TenantRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Tenant, error)
	ListActive(ctx context.Context) ([]*domain.Tenant, error)
}

type tenantRepository struct {
	db *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) TenantRepository {
	return &tenantRepository{
		db: db,
	}
}

const tenantColumns = `
	codigo_acceso,
	odoo_url,
	odoo_db,
	odoo_username,
	odoo_api_key,
	COALESCE(filtro_compania, ''),
	COALESCE(estado, true),
	COALESCE(NULLIF(nombre_comercial, ''), codigo_acceso),
	COALESCE(logo_url, ''),
	COALESCE(color_primario, '#84cc16'),
	COALESCE(color_secundario, '#1e293b'),
	COALESCE(color_acento, '#0ea5e9'),
	COALESCE(tienda_habilitada, true),
	COALESCE(NULLIF(tienda_categoria_nombre, ''), 'Catalogo'),
	COALESCE(productos_ocultos, '[]'::jsonb),
	COALESCE(categorias_ocultas, '[]'::jsonb),
	COALESCE(whatsapp_numeros, ''),
	COALESCE(footer_description, ''),
	COALESCE(support_text, ''),
	COALESCE(quality_text, ''),
	COALESCE(facebook_url, ''),
	COALESCE(instagram_url, ''),
	COALESCE(tiktok_url, '')`

func (r *tenantRepository) GetByCode(ctx context.Context, code string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM empresas WHERE codigo_acceso = $1`

	tenant, err := scanTenant(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to load tenant %q: %w", code, err)
	}

	return tenant, nil
}

func (r *tenantRepository) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM empresas WHERE COALESCE(estado, true) ORDER BY codigo_acceso`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		tenants = append(tenants, tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, nil
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var (
		t                domain.Tenant
		hiddenProducts   []byte
		hiddenCategories []byte
	)

	err := row.Scan(
		&t.Code,
		&t.ErpURL,
		&t.ErpDatabase,
		&t.ErpUsername,
		&t.ErpAPIKey,
		&t.CompanyFilter,
		&t.Active,
		&t.TradeName,
		&t.LogoURL,
		&t.PrimaryColor,
		&t.SecondaryColor,
		&t.AccentColor,
		&t.StoreEnabled,
		&t.StoreCategory,
		&hiddenProducts,
		&hiddenCategories,
		&t.WhatsappNumbers,
		&t.FooterDescription,
		&t.SupportText,
		&t.QualityText,
		&t.FacebookURL,
		&t.InstagramURL,
		&t.TiktokURL,
	)
	if err != nil {
		return nil, err
	}

	t.HiddenProducts, err = decodeIDList(hiddenProducts)
	if err != nil {
		return nil, fmt.Errorf("invalid productos_ocultos for tenant %q: %w", t.Code, err)
	}
	if err := json.Unmarshal(hiddenCategories, &t.HiddenCategories); err != nil {
		return nil, fmt.Errorf("invalid categorias_ocultas for tenant %q: %w", t.Code, err)
	}

	return &t, nil
}

// decodeIDList tolerates id arrays stored as numbers or numeric strings;
// the dashboard has written both shapes over time.
func decodeIDList(raw []byte) ([]int, error) {
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case float64:
			ids = append(ids, int(n))
		case string:
			id, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return nil, fmt.Errorf("non-numeric product id %q", n)
			}
			ids = append(ids, id)
		default:
			return nil, fmt.Errorf("unsupported product id type %T", v)
		}
	}
	return ids, nil
}
