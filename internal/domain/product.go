package domain

// Product is the canonical catalog entity shown by a tenant's storefront.
// Derived once from a raw ERP record and never mutated afterward; the
// engine re-fetches rather than patches.
type Product struct {
	ID                   int     `json:"id"`
	Name                 string  `json:"name"`
	Price                float64 `json:"price"`
	Category             string  `json:"category"`
	Stock                float64 `json:"stock"`
	Image                string  `json:"image,omitempty"`
	Description          string  `json:"description,omitempty"`
	Presentation         string  `json:"presentation,omitempty"`
	SanitaryRegistration string  `json:"sanitary_registration,omitempty"`
	Laboratory           string  `json:"laboratory,omitempty"`
	ActiveIngredient     string  `json:"active_ingredient,omitempty"`
}
