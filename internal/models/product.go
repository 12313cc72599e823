package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Category is the closed set of product categories.
type Category string

const (
	CategoryUnknown    Category = "UNKNOWN"
	CategoryCloths     Category = "CLOTHS"
	CategoryFood       Category = "FOOD"
	CategoryHousewares Category = "HOUSEWARES"
	CategoryAutomotive Category = "AUTOMOTIVE"
	CategoryTools      Category = "TOOLS"
)

var categories = []Category{
	CategoryUnknown,
	CategoryCloths,
	CategoryFood,
	CategoryHousewares,
	CategoryAutomotive,
	CategoryTools,
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory resolves a member name. Unknown names are rejected, never mapped to UNKNOWN.
func ParseCategory(name string) (Category, error) {
	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Message: fmt.Sprintf("invalid category %q", name)}
}

func (c Category) String() string { return string(c) }

// Value implements driver.Valuer.
func (c Category) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements sql.Scanner.
func (c *Category) Scan(value any) error {
	var name string
	switch v := value.(type) {
	case string:
		name = v
	case []byte:
		name = string(v)
	default:
		return fmt.Errorf("unsupported category column type %T", value)
	}
	parsed, err := ParseCategory(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Product represents a product in the catalog.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(100);not null;index" validate:"required,max=100"`
	Description string          `gorm:"type:varchar(250);not null" validate:"max=250"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" validate:"gte=0,lt=100000000"`
	Available   bool            `gorm:"not null;index"`
	Category    Category        `gorm:"type:varchar(20);not null;index" validate:"required,oneof=UNKNOWN CLOTHS FOOD HOUSEWARES AUTOMOTIVE TOOLS"`
}

func (p Product) String() string {
	if p.ID == 0 {
		return fmt.Sprintf("<Product %s id=[None]>", p.Name)
	}
	return fmt.Sprintf("<Product %s id=[%d]>", p.Name, p.ID)
}

// Serialize converts the product into a plain field mapping for the wire.
func (p Product) Serialize() map[string]any {
	var id any
	if p.ID != 0 {
		id = p.ID
	}
	return map[string]any{
		"id":          id,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.StringFixed(2),
		"available":   p.Available,
		"category":    p.Category.String(),
	}
}

// MarshalJSON encodes the serialized mapping.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Serialize())
}

// UnmarshalJSON decodes a JSON object and deserializes it over p.
func (p *Product) UnmarshalJSON(data []byte) error {
	fields, err := DecodeFields(data)
	if err != nil {
		return err
	}
	return p.Deserialize(fields)
}

// DecodeFields parses a JSON document keeping numbers exact.
func DecodeFields(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields any
	if err := dec.Decode(&fields); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid JSON data: %v", err)}
	}
	return fields, nil
}

// Deserialize reads name, description, price, available and category from data.
// The id is never read. On error p is left untouched.
func (p *Product) Deserialize(data any) error {
	fields, ok := data.(map[string]any)
	if !ok {
		return &ValidationError{Message: "Invalid product: body of request contained bad or no data"}
	}

	next := *p

	name, err := stringField(fields, "name")
	if err != nil {
		return err
	}
	next.Name = name

	description, err := stringField(fields, "description")
	if err != nil {
		return err
	}
	next.Description = description

	raw, found := fields["price"]
	if !found {
		return missingField("price")
	}
	price, err := toDecimal(raw)
	if err != nil {
		return err
	}
	price, err = normalizePrice(price)
	if err != nil {
		return err
	}
	next.Price = price

	raw, found = fields["available"]
	if !found {
		return missingField("available")
	}
	available, isBool := raw.(bool)
	if !isBool {
		return &ValidationError{Field: "available", Message: fmt.Sprintf("Invalid type for boolean [available]: %T", raw)}
	}
	next.Available = available

	categoryName, err := stringField(fields, "category")
	if err != nil {
		return err
	}
	category, err := ParseCategory(categoryName)
	if err != nil {
		return err
	}
	next.Category = category

	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func stringField(fields map[string]any, key string) (string, error) {
	raw, found := fields[key]
	if !found {
		return "", missingField(key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: key, Message: fmt.Sprintf("Invalid type for string [%s]: %T", key, raw)}
	}
	return s, nil
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err == nil {
			return d, nil
		}
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err == nil {
			return d, nil
		}
	case float64:
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			return decimal.NewFromFloat(v), nil
		}
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	}
	return decimal.Decimal{}, &ValidationError{Field: "price", Message: fmt.Sprintf("Invalid value for decimal [price]: %v", raw)}
}

// PriceScale is the number of decimal places a price is stored with.
const PriceScale = 2

// maxPrice is the first value a decimal(10,2) column cannot hold.
var maxPrice = decimal.New(1, 8)

// normalizePrice rounds d half away from zero to PriceScale places and rejects values the
// price column cannot store. The exponent is checked before rounding so inputs such as
// 1e999999999 are never expanded.
func normalizePrice(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if d.Exponent() < -64 {
		return decimal.Decimal{}, &ValidationError{Field: "price", Message: "Too many decimal places [price]"}
	}
	if d.Exponent() >= 8 {
		return decimal.Decimal{}, priceOutOfRange()
	}
	rounded := d.Round(PriceScale)
	if rounded.Abs().GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, priceOutOfRange()
	}
	return rounded, nil
}

func priceOutOfRange() error {
	return &ValidationError{Field: "price", Message: fmt.Sprintf("Price out of range [price]: must be below %s", maxPrice.String())}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the struct-level rules: non-empty name, length limits,
// non-negative price and a known category.
func (p *Product) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	e := validationErrors[0]
	return &ValidationError{
		Field:   strings.ToLower(e.Field()),
		Message: fmt.Sprintf("Field '%s' failed on the '%s' tag", strings.ToLower(e.Field()), e.Tag()),
	}
}
