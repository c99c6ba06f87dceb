package domain

import "strings"

// Tenant is one business account: its ERP credentials, storefront branding
// and catalog visibility overrides. Loaded once per request and treated as
// an immutable snapshot; configuration edits never affect a fetch in flight.
type Tenant struct {
	Code          string `json:"code"`
	ErpURL        string `json:"-"`
	ErpDatabase   string `json:"-"`
	ErpUsername   string `json:"-"`
	ErpAPIKey     string `json:"-"`
	CompanyFilter string `json:"company_filter,omitempty"`
	Active        bool   `json:"active"`

	TradeName      string `json:"trade_name"`
	LogoURL        string `json:"logo_url,omitempty"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`

	StoreEnabled  bool   `json:"store_enabled"`
	StoreCategory string `json:"store_category"`

	HiddenProducts   []int    `json:"hidden_products,omitempty"`
	HiddenCategories []string `json:"hidden_categories,omitempty"`

	WhatsappNumbers   string `json:"whatsapp_numbers,omitempty"`
	FooterDescription string `json:"footer_description,omitempty"`
	SupportText       string `json:"support_text,omitempty"`
	QualityText       string `json:"quality_text,omitempty"`
	FacebookURL       string `json:"facebook_url,omitempty"`
	InstagramURL      string `json:"instagram_url,omitempty"`
	TiktokURL         string `json:"tiktok_url,omitempty"`
}

// CatalogConfig is the slice of tenant configuration the resolution engine
// consumes: a free-text category label and an optional company scope. The
// company id is filled in after the session resolves the company filter.
type CatalogConfig struct {
	CategoryLabel string
	CompanyID     int
}

// VisibilitySet holds per-tenant hide overrides with membership keys
// pre-normalized. Consulted, never mutated, by the visibility filter.
type VisibilitySet struct {
	HiddenProducts   map[int]struct{}
	HiddenCategories map[string]struct{}
}

// NewVisibilitySet normalizes hidden category labels (trimmed, uppercased)
// so lookups are case- and whitespace-insensitive.
func NewVisibilitySet(productIDs []int, categories []string) VisibilitySet {
	set := VisibilitySet{
		HiddenProducts:   make(map[int]struct{}, len(productIDs)),
		HiddenCategories: make(map[string]struct{}, len(categories)),
	}
	for _, id := range productIDs {
		set.HiddenProducts[id] = struct{}{}
	}
	for _, c := range categories {
		set.HiddenCategories[NormalizeCategory(c)] = struct{}{}
	}
	return set
}

// NormalizeCategory is the single normalization used for category label
// comparison throughout the engine.
func NormalizeCategory(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// CatalogConfig derives the resolution-engine view of this tenant.
func (t *Tenant) CatalogConfig() CatalogConfig {
	return CatalogConfig{CategoryLabel: strings.TrimSpace(t.StoreCategory)}
}

// Visibility derives the normalized hide overrides of this tenant.
func (t *Tenant) Visibility() VisibilitySet {
	return NewVisibilitySet(t.HiddenProducts, t.HiddenCategories)
}
