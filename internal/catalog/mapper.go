package catalog

import (
	"strings"

	"lemonbi/storefront/internal/domain"
	"lemonbi/storefront/internal/erp"
)

// categoryRef is the decoded shape of the ERP's composite category field,
// which arrives either as boolean false (no category) or as an (id, name)
// pair. Decoding it explicitly beats optimistic field access on untyped
// payloads.
type categoryRef struct {
	present bool
	id      int
	name    string
}

func decodeCategoryRef(v any) categoryRef {
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return categoryRef{}
	}
	id, okID := pair[0].(float64)
	name, okName := pair[1].(string)
	if !okID || !okName {
		return categoryRef{}
	}
	return categoryRef{present: true, id: int(id), name: name}
}

// asString tolerates the ERP's habit of returning false for empty text.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat treats absent or null numeric business data as zero, never as an
// error.
func asFloat(v any) float64 {
	f, _ := v.(float64)
	if f < 0 {
		return 0
	}
	return f
}

func asInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}

// MapProduct normalizes one raw ERP record into the canonical product.
// Missing category maps to "General"; price and stock default to zero; the
// presentation label, when not separately provided, is the substring after
// the last comma of the display name, where ERP naming conventions encode
// variant packaging.
func MapProduct(rec erp.RawRecord) domain.Product {
	cat := decodeCategoryRef(rec["categ_id"])

	category := "General"
	if cat.present {
		category = cat.name
	}

	name := asString(rec["display_name"])

	laboratory := asString(rec["x_laboratorio"])
	if laboratory == "" {
		if cat.present {
			laboratory = cat.name
		} else {
			laboratory = "Laboratorio"
		}
	}

	return domain.Product{
		ID:                   asInt(rec["id"]),
		Name:                 name,
		Price:                asFloat(rec["list_price"]),
		Category:             category,
		Stock:                asFloat(rec["qty_available"]),
		Image:                asString(rec["image_128"]),
		Description:          asString(rec["description_sale"]),
		Presentation:         presentationOf(name),
		SanitaryRegistration: asString(rec["x_registro_sanitario"]),
		Laboratory:           laboratory,
		ActiveIngredient:     asString(rec["x_principio_activo"]),
	}
}

// MapProducts maps a whole result set, preserving order.
func MapProducts(records []erp.RawRecord) []domain.Product {
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, MapProduct(rec))
	}
	return products
}

func presentationOf(displayName string) string {
	// Mirrors the dashboard behavior: a name without a comma is its own
	// presentation label.
	idx := strings.LastIndex(displayName, ",")
	return strings.TrimSpace(displayName[idx+1:])
}
