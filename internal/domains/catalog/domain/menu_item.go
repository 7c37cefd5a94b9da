package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category enumerates the menu sections.
type Category string

const (
	CategoryMainCourse Category = "Main Course"
	CategoryShortEats  Category = "Short Eats"
	CategoryBeverages  Category = "Beverages"
	CategoryDesserts   Category = "Desserts"
)

// DietaryTag labels menu items for dietary filtering.
type DietaryTag string

const (
	TagVegetarian   DietaryTag = "Vegetarian"
	TagVegan        DietaryTag = "Vegan"
	TagHalal        DietaryTag = "Halal"
	TagSpicy        DietaryTag = "Spicy"
	TagContainsNuts DietaryTag = "Contains Nuts"
)

const (
	DefaultPreparationMinutes int32 = 15
	DefaultDailyQuantity      int32 = 100
)

var (
	ErrEmptyName            = errors.New("menu item name is required")
	ErrNegativePrice        = errors.New("price must not be negative")
	ErrInvalidCategory      = errors.New("menu category is invalid")
	ErrInvalidDietaryTag    = errors.New("dietary tag is invalid")
	ErrNegativePreparation  = errors.New("preparation time must not be negative")
	ErrInvalidDailyQuantity = errors.New("daily quantity must not be negative")
	ErrRemainingOutOfRange  = errors.New("remaining quantity must be between zero and the daily quantity")
	ErrInvalidReservation   = errors.New("reserved quantity must be greater than zero")
	ErrUnavailable          = errors.New("menu item is currently unavailable")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Categories lists the menu sections in display order.
func Categories() []Category {
	return []Category{CategoryMainCourse, CategoryShortEats, CategoryBeverages, CategoryDesserts}
}

// ParseCategory converts raw input into a Category.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), raw) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// ParseDietaryTag converts raw input into a DietaryTag.
func ParseDietaryTag(raw string) (DietaryTag, error) {
	raw = strings.TrimSpace(raw)
	for _, t := range []DietaryTag{TagVegetarian, TagVegan, TagHalal, TagSpicy, TagContainsNuts} {
		if strings.EqualFold(string(t), raw) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDietaryTag, raw)
}

// MenuItem is a sellable dish together with its daily stock counter.
type MenuItem struct {
	ID                 int64
	Name               string
	Description        string
	Price              decimal.Decimal
	Category           Category
	Available          bool
	PreparationMinutes int32
	DailyQuantity      int32
	RemainingQuantity  int32
	Popularity         int64
	Ingredients        []string
	DietaryTags        []DietaryTag
}

// NewMenuItem builds an available item with default preparation time and a full daily stock.
func NewMenuItem(name string, price decimal.Decimal, category Category) (*MenuItem, error) {
	item := &MenuItem{
		Name:               strings.TrimSpace(name),
		Price:              price,
		Category:           category,
		Available:          true,
		PreparationMinutes: DefaultPreparationMinutes,
		DailyQuantity:      DefaultDailyQuantity,
		RemainingQuantity:  DefaultDailyQuantity,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate enforces invariants on the aggregate.
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.Price.IsNegative() {
		return ErrNegativePrice
	}
	if _, err := ParseCategory(string(m.Category)); err != nil {
		return err
	}
	for _, tag := range m.DietaryTags {
		if _, err := ParseDietaryTag(string(tag)); err != nil {
			return err
		}
	}
	if m.PreparationMinutes < 0 {
		return ErrNegativePreparation
	}
	if m.DailyQuantity < 0 {
		return ErrInvalidDailyQuantity
	}
	if m.RemainingQuantity < 0 || m.RemainingQuantity > m.DailyQuantity {
		return ErrRemainingOutOfRange
	}
	return nil
}

// CheckReservation reports whether qty units could be taken right now without mutating anything.
func (m *MenuItem) CheckReservation(qty int32) error {
	if qty <= 0 {
		return ErrInvalidReservation
	}
	if !m.Available {
		return fmt.Errorf("%w: %s", ErrUnavailable, m.Name)
	}
	if qty > m.RemainingQuantity {
		return fmt.Errorf("%w for %s. Available: %d", ErrInsufficientQuantity, m.Name, m.RemainingQuantity)
	}
	return nil
}

// Reserve takes qty units from the remaining stock and counts them towards popularity.
func (m *MenuItem) Reserve(qty int32) error {
	if err := m.CheckReservation(qty); err != nil {
		return err
	}
	m.RemainingQuantity -= qty
	m.Popularity += int64(qty)
	return nil
}

// Restore returns qty units to the remaining stock without exceeding the daily quantity.
// Popularity is left untouched.
func (m *MenuItem) Restore(qty int32) {
	if qty <= 0 {
		return
	}
	restored := int64(m.RemainingQuantity) + int64(qty)
	if restored > int64(m.DailyQuantity) {
		restored = int64(m.DailyQuantity)
	}
	m.RemainingQuantity = int32(restored)
}

// ResetDaily refills the remaining stock to the daily quantity.
func (m *MenuItem) ResetDaily() {
	m.RemainingQuantity = m.DailyQuantity
}

// ToggleAvailability flips the availability flag and returns the new value.
func (m *MenuItem) ToggleAvailability() bool {
	m.Available = !m.Available
	return m.Available
}

// SetQuantities replaces the daily quantity; remaining defaults to the new daily quantity.
func (m *MenuItem) SetQuantities(daily int32, remaining *int32) error {
	if daily < 0 {
		return ErrInvalidDailyQuantity
	}
	next := daily
	if remaining != nil {
		next = *remaining
	}
	if next < 0 || next > daily {
		return ErrRemainingOutOfRange
	}
	m.DailyQuantity = daily
	m.RemainingQuantity = next
	return nil
}

// HasAllTags reports whether the item carries every requested tag.
func (m *MenuItem) HasAllTags(tags []DietaryTag) bool {
	for _, want := range tags {
		found := false
		for _, have := range m.DietaryTags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *MenuItem) Clone() *MenuItem {
	if m == nil {
		return nil
	}
	clone := *m
	clone.Ingredients = append([]string(nil), m.Ingredients...)
	clone.DietaryTags = append([]DietaryTag(nil), m.DietaryTags...)
	return &clone
}
