package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinimumThreshold applies when an item is created without a threshold.
const DefaultMinimumThreshold = 5

var (
	ErrEmptyIngredient     = errors.New("ingredient is required")
	ErrInvalidUnit         = errors.New("unit must be one of kg, liters, pieces, packets")
	ErrInvalidCategory     = errors.New("inventory category is invalid")
	ErrNegativeStock       = errors.New("current stock must not be negative")
	ErrNegativeThreshold   = errors.New("minimum threshold must not be negative")
	ErrInvalidCapacity     = errors.New("maximum capacity must be positive")
	ErrNegativeCost        = errors.New("cost per unit must not be negative")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidOperation    = errors.New(`invalid operation. use "add" or "subtract"`)
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrWastageExceedsStock = errors.New("cannot record wastage more than current stock")
	ErrInvalidReason       = errors.New("wastage reason is invalid")
)

type Unit string

const (
	UnitKilograms Unit = "kg"
	UnitLiters    Unit = "liters"
	UnitPieces    Unit = "pieces"
	UnitPackets   Unit = "packets"
)

func ParseUnit(raw string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(raw))); u {
	case UnitKilograms, UnitLiters, UnitPieces, UnitPackets:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, raw)
}

type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryMeat       Category = "Meat"
	CategoryDairy      Category = "Dairy"
	CategoryGrains     Category = "Grains"
	CategoryBeverages  Category = "Beverages"
	CategoryCondiments Category = "Condiments"
	CategoryOthers     Category = "Others"
)

// Categories lists the storage categories in display order.
func Categories() []Category {
	return []Category{
		CategoryVegetables, CategoryMeat, CategoryDairy, CategoryGrains,
		CategoryBeverages, CategoryCondiments, CategoryOthers,
	}
}

func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range Categories() {
		if strings.EqualFold(raw, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// StockOperation is the direction of a manual stock adjustment.
type StockOperation string

const (
	OperationAdd      StockOperation = "add"
	OperationSubtract StockOperation = "subtract"
)

func ParseStockOperation(raw string) (StockOperation, error) {
	switch op := StockOperation(strings.ToLower(strings.TrimSpace(raw))); op {
	case OperationAdd, OperationSubtract:
		return op, nil
	}
	return "", ErrInvalidOperation
}

// Supplier is the contact an item is reordered from.
type Supplier struct {
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Item is one stocked ingredient. Ingredient names are unique.
type Item struct {
	ID               int64
	Ingredient       string
	CurrentStock     float64
	Unit             Unit
	MinimumThreshold float64
	MaximumCapacity  float64
	CostPerUnit      decimal.Decimal
	Supplier         Supplier
	LastRestocked    time.Time
	ExpiresAt        *time.Time
	Category         Category
	DailyUsage       float64
	Wastage          []WastageEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewItem builds an item with the default threshold, restocked at now.
func NewItem(ingredient string, unit Unit, category Category, stock, capacity float64, cost decimal.Decimal, now time.Time) (*Item, error) {
	item := &Item{
		Ingredient:       strings.TrimSpace(ingredient),
		CurrentStock:     stock,
		Unit:             unit,
		MinimumThreshold: DefaultMinimumThreshold,
		MaximumCapacity:  capacity,
		CostPerUnit:      cost,
		Category:         category,
		LastRestocked:    now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate re-applies core invariants for persistence.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Ingredient) == "" {
		return ErrEmptyIngredient
	}
	if _, err := ParseUnit(string(i.Unit)); err != nil {
		return err
	}
	if _, err := ParseCategory(string(i.Category)); err != nil {
		return err
	}
	if i.CurrentStock < 0 {
		return ErrNegativeStock
	}
	if i.MinimumThreshold < 0 {
		return ErrNegativeThreshold
	}
	if i.MaximumCapacity <= 0 {
		return ErrInvalidCapacity
	}
	if i.CostPerUnit.IsNegative() {
		return ErrNegativeCost
	}
	return nil
}

// IsLowStock reports whether stock has fallen to the reorder threshold.
func (i *Item) IsLowStock() bool {
	return i.CurrentStock <= i.MinimumThreshold
}

// Adjust applies a manual stock movement. Adding stamps LastRestocked.
func (i *Item) Adjust(op StockOperation, qty float64, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	switch op {
	case OperationAdd:
		i.CurrentStock += qty
		i.LastRestocked = now
	case OperationSubtract:
		if i.CurrentStock < qty {
			return ErrInsufficientStock
		}
		i.CurrentStock -= qty
	default:
		return ErrInvalidOperation
	}
	i.UpdatedAt = now
	return nil
}

// RecordWastage removes wasted stock and keeps the entry for reporting.
func (i *Item) RecordWastage(entry WastageEntry, now time.Time) error {
	if entry.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if entry.Reason == "" {
		entry.Reason = ReasonOther
	}
	if _, err := ParseWastageReason(string(entry.Reason)); err != nil {
		return err
	}
	if i.CurrentStock < entry.Quantity {
		return ErrWastageExceedsStock
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = now
	}
	i.CurrentStock -= entry.Quantity
	i.Wastage = append(i.Wastage, entry)
	i.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	if i.ExpiresAt != nil {
		expires := *i.ExpiresAt
		clone.ExpiresAt = &expires
	}
	clone.Wastage = append([]WastageEntry(nil), i.Wastage...)
	return &clone
}
