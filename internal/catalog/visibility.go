package catalog

import (
	"lemonbi/storefront/internal/domain"
)

// ApplyVisibility removes products hidden by id and products whose category
// label is hidden (trimmed, uppercased comparison). Pure filter: the input
// is never mutated, relative order of retained products is preserved, and
// applying it twice yields the same result as applying it once.
func ApplyVisibility(products []domain.Product, set domain.VisibilitySet) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, hidden := set.HiddenProducts[p.ID]; hidden {
			continue
		}
		if _, hidden := set.HiddenCategories[domain.NormalizeCategory(p.Category)]; hidden {
			continue
		}
		out = append(out, p)
	}
	return out
}
