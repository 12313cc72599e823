package models_test

import (
	"encoding/json"
	"testing"

	"catalog/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() map[string]any {
	return map[string]any{
		"name":        "Fedora",
		"description": "A red hat",
		"price":       json.Number("12.50"),
		"available":   true,
		"category":    "CLOTHS",
	}
}

func TestProduct_String(t *testing.T) {
	p := models.Product{Name: "Fedora"}
	assert.Equal(t, "<Product Fedora id=[None]>", p.String())
	p.ID = 7
	assert.Equal(t, "<Product Fedora id=[7]>", p.String())
}

func TestProduct_Serialize(t *testing.T) {
	p := models.Product{
		Name:        "Fedora",
		Description: "A red hat",
		Price:       decimal.RequireFromString("12.5"),
		Available:   true,
		Category:    models.CategoryCloths,
	}

	fields := p.Serialize()
	assert.Nil(t, fields["id"])
	assert.Equal(t, "Fedora", fields["name"])
	assert.Equal(t, "A red hat", fields["description"])
	assert.Equal(t, "12.50", fields["price"])
	assert.Equal(t, true, fields["available"])
	assert.Equal(t, "CLOTHS", fields["category"])

	p.ID = 42
	assert.Equal(t, uint(42), p.Serialize()["id"])
}

func TestProduct_DeserializeValid(t *testing.T) {
	var p models.Product
	require.NoError(t, p.Deserialize(validFields()))

	assert.Equal(t, uint(0), p.ID)
	assert.Equal(t, "Fedora", p.Name)
	assert.Equal(t, "A red hat", p.Description)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, p.Available)
	assert.Equal(t, models.CategoryCloths, p.Category)
}

func TestProduct_DeserializeIgnoresID(t *testing.T) {
	fields := validFields()
	fields["id"] = json.Number("99")

	p := models.Product{ID: 5}
	require.NoError(t, p.Deserialize(fields))
	assert.Equal(t, uint(5), p.ID)
}

func TestProduct_DeserializePriceForms(t *testing.T) {
	for name, raw := range map[string]any{
		"json number": json.Number("3.99"),
		"string":      "3.99",
		"float":       3.99,
	} {
		t.Run(name, func(t *testing.T) {
			fields := validFields()
			fields["price"] = raw
			var p models.Product
			require.NoError(t, p.Deserialize(fields))
			assert.Equal(t, "3.99", p.Price.StringFixed(2))
		})
	}
}

func TestProduct_DeserializeRoundsPrice(t *testing.T) {
	for raw, expected := range map[string]string{
		"12.345":      "12.35",
		"12.344":      "12.34",
		"0.005":       "0.01",
		"12.500":      "12.50",
		"99999999.99": "99999999.99",
		"0":           "0.00",
	} {
		t.Run(raw, func(t *testing.T) {
			fields := validFields()
			fields["price"] = json.Number(raw)
			var p models.Product
			require.NoError(t, p.Deserialize(fields))
			assert.Equal(t, expected, p.Price.StringFixed(2))
			assert.GreaterOrEqual(t, p.Price.Exponent(), int32(-models.PriceScale))
		})
	}
}

func TestProduct_RoundTrip(t *testing.T) {
	for _, category := range models.Categories() {
		original := models.Product{
			Name:        "Widget",
			Description: "Does widget things",
			Price:       decimal.RequireFromString("19.99"),
			Available:   category != models.CategoryTools,
			Category:    category,
		}

		var copied models.Product
		require.NoError(t, copied.Deserialize(original.Serialize()))

		assert.Equal(t, original.Name, copied.Name)
		assert.Equal(t, original.Description, copied.Description)
		assert.True(t, original.Price.Equal(copied.Price))
		assert.Equal(t, original.Available, copied.Available)
		assert.Equal(t, original.Category, copied.Category)
	}
}

func TestProduct_JSONRoundTrip(t *testing.T) {
	original := models.Product{
		ID:          3,
		Name:        "Hammer",
		Description: "Claw hammer",
		Price:       decimal.RequireFromString("7.25"),
		Available:   false,
		Category:    models.CategoryTools,
	}
	body, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":"Hammer","description":"Claw hammer","price":"7.25","available":false,"category":"TOOLS"}`, string(body))

	var decoded models.Product
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "Hammer", decoded.Name)
	assert.True(t, decoded.Price.Equal(original.Price))
}

func TestProduct_DeserializeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"available not bool", func(f map[string]any) { f["available"] = "yes" }, "available"},
		{"unknown category", func(f map[string]any) { f["category"] = "JEWELRY" }, "category"},
		{"lowercase category", func(f map[string]any) { f["category"] = "cloths" }, "category"},
		{"missing name", func(f map[string]any) { delete(f, "name") }, "name"},
		{"missing description", func(f map[string]any) { delete(f, "description") }, "description"},
		{"missing price", func(f map[string]any) { delete(f, "price") }, "price"},
		{"missing available", func(f map[string]any) { delete(f, "available") }, "available"},
		{"missing category", func(f map[string]any) { delete(f, "category") }, "category"},
		{"empty name", func(f map[string]any) { f["name"] = "" }, "name"},
		{"name not string", func(f map[string]any) { f["name"] = json.Number("1") }, "name"},
		{"price not numeric", func(f map[string]any) { f["price"] = "cheap" }, "price"},
		{"negative price", func(f map[string]any) { f["price"] = json.Number("-1.00") }, "price"},
		{"huge exponent price", func(f map[string]any) { f["price"] = json.Number("1e400") }, "price"},
		{"negative huge exponent price", func(f map[string]any) { f["price"] = json.Number("-1e400") }, "price"},
		{"price wider than column", func(f map[string]any) { f["price"] = json.Number("123456789012.34") }, "price"},
		{"price at column limit", func(f map[string]any) { f["price"] = json.Number("100000000") }, "price"},
		{"price rounding past column limit", func(f map[string]any) { f["price"] = json.Number("99999999.995") }, "price"},
		{"price with absurd scale", func(f map[string]any) { f["price"] = json.Number("1e-100") }, "price"},
		{"price string huge exponent", func(f map[string]any) { f["price"] = "1e999999999" }, "price"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			tc.mutate(fields)

			p := models.Product{Name: "Untouched"}
			err := p.Deserialize(fields)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, "Untouched", p.Name)
		})
	}
}

func TestProduct_DeserializeNotAMapping(t *testing.T) {
	for _, data := range []any{nil, "a string", []any{validFields()}, json.Number("1")} {
		var p models.Product
		var verr *models.ValidationError
		assert.ErrorAs(t, p.Deserialize(data), &verr)
	}
}

func TestDecodeFields_InvalidJSON(t *testing.T) {
	_, err := models.DecodeFields([]byte("{not json"))
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseCategory(t *testing.T) {
	c, err := models.ParseCategory("FOOD")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFood, c)

	_, err = models.ParseCategory("")
	assert.Error(t, err)

	assert.Len(t, models.Categories(), 6)
}

func TestProductEvent_UnmarshalKeepsProductID(t *testing.T) {
	body, err := json.Marshal(models.ProductEvent{
		Type:      models.EventProductUpdated,
		ProductID: 9,
		Product: &models.Product{
			ID:       9,
			Name:     "Hammer",
			Price:    decimal.RequireFromString("7.25"),
			Category: models.CategoryTools,
		},
	})
	require.NoError(t, err)

	var event models.ProductEvent
	require.NoError(t, json.Unmarshal(body, &event))
	require.NotNil(t, event.Product)
	assert.Equal(t, uint(9), event.Product.ID)
	assert.Equal(t, "<Product Hammer id=[9]>", event.Product.String())
}
