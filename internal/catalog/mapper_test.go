package catalog

import (
	"testing"

	"lemonbi/storefront/internal/erp"

	"github.com/stretchr/testify/assert"
)

func TestMapProduct(t *testing.T) {
	t.Run("record without category maps to General", func(t *testing.T) {
		p := MapProduct(erp.RawRecord{
			"id":           float64(7),
			"display_name": "Paracetamol 500mg, Caja x10",
			"list_price":   12.5,
			"categ_id":     false,
		})

		assert.Equal(t, 7, p.ID)
		assert.Equal(t, "Paracetamol 500mg, Caja x10", p.Name)
		assert.Equal(t, 12.5, p.Price)
		assert.Equal(t, "General", p.Category)
		assert.Equal(t, "Caja x10", p.Presentation)
		assert.Zero(t, p.Stock)
	})

	t.Run("category pair decodes to its display name", func(t *testing.T) {
		p := MapProduct(erp.RawRecord{
			"id":           float64(3),
			"display_name": "Vitamina C 1g",
			"categ_id":     []any{float64(42), "Vitaminas"},
		})

		assert.Equal(t, "Vitaminas", p.Category)
		// No comma: the full name doubles as the presentation label.
		assert.Equal(t, "Vitamina C 1g", p.Presentation)
	})

	t.Run("missing numeric fields default to zero", func(t *testing.T) {
		p := MapProduct(erp.RawRecord{
			"id":           float64(3),
			"display_name": "Muestra",
			"list_price":   nil,
		})

		assert.Zero(t, p.Price)
		assert.Zero(t, p.Stock)
	})

	t.Run("false text fields decode as empty", func(t *testing.T) {
		p := MapProduct(erp.RawRecord{
			"id":               float64(3),
			"display_name":     "Muestra",
			"description_sale": false,
			"image_128":        false,
		})

		assert.Empty(t, p.Description)
		assert.Empty(t, p.Image)
	})

	t.Run("laboratory falls back to category name then placeholder", func(t *testing.T) {
		withCategory := MapProduct(erp.RawRecord{
			"id":           float64(1),
			"display_name": "Jarabe",
			"categ_id":     []any{float64(8), "Antitusivos"},
		})
		assert.Equal(t, "Antitusivos", withCategory.Laboratory)

		explicit := MapProduct(erp.RawRecord{
			"id":            float64(2),
			"display_name":  "Jarabe",
			"categ_id":      []any{float64(8), "Antitusivos"},
			"x_laboratorio": "Farmindustria",
		})
		assert.Equal(t, "Farmindustria", explicit.Laboratory)

		bare := MapProduct(erp.RawRecord{
			"id":           float64(3),
			"display_name": "Jarabe",
			"categ_id":     false,
		})
		assert.Equal(t, "Laboratorio", bare.Laboratory)
	})

	t.Run("extended sanitary metadata passes through", func(t *testing.T) {
		p := MapProduct(erp.RawRecord{
			"id":                   float64(9),
			"display_name":         "Amoxicilina 500mg, Blister x12",
			"qty_available":        float64(34),
			"x_registro_sanitario": "EE-04231",
			"x_principio_activo":   "Amoxicilina",
		})

		assert.Equal(t, float64(34), p.Stock)
		assert.Equal(t, "EE-04231", p.SanitaryRegistration)
		assert.Equal(t, "Amoxicilina", p.ActiveIngredient)
	})

	t.Run("maps a result set preserving order", func(t *testing.T) {
		products := MapProducts([]erp.RawRecord{
			{"id": float64(2), "display_name": "B"},
			{"id": float64(1), "display_name": "A"},
		})

		assert.Equal(t, []int{2, 1}, []int{products[0].ID, products[1].ID})
	})
}
