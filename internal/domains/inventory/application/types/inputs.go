package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
)

// ItemInput carries optional fields for create and update flows.
// Nil fields are left untouched on update.
type ItemInput struct {
	Ingredient       *string
	CurrentStock     *float64
	Unit             *string
	MinimumThreshold *float64
	MaximumCapacity  *float64
	CostPerUnit      *decimal.Decimal
	Supplier         *domain.Supplier
	ExpiresAt        *time.Time
	Category         *string
	DailyUsage       *float64
}

// Apply copies the set fields onto item and validates the result.
func (in ItemInput) Apply(item *domain.Item) error {
	if in.Ingredient != nil {
		item.Ingredient = *in.Ingredient
	}
	if in.CurrentStock != nil {
		item.CurrentStock = *in.CurrentStock
	}
	if in.Unit != nil {
		unit, err := domain.ParseUnit(*in.Unit)
		if err != nil {
			return err
		}
		item.Unit = unit
	}
	if in.MinimumThreshold != nil {
		item.MinimumThreshold = *in.MinimumThreshold
	}
	if in.MaximumCapacity != nil {
		item.MaximumCapacity = *in.MaximumCapacity
	}
	if in.CostPerUnit != nil {
		item.CostPerUnit = *in.CostPerUnit
	}
	if in.Supplier != nil {
		item.Supplier = *in.Supplier
	}
	if in.ExpiresAt != nil {
		expires := *in.ExpiresAt
		item.ExpiresAt = &expires
	}
	if in.Category != nil {
		category, err := domain.ParseCategory(*in.Category)
		if err != nil {
			return err
		}
		item.Category = category
	}
	if in.DailyUsage != nil {
		item.DailyUsage = *in.DailyUsage
	}
	return item.Validate()
}

type ListItemsInput struct {
	Category string
	LowStock bool
}

// WastageReportInput bounds are YYYY-MM-DD or RFC 3339; the range applies only when both are set.
type WastageReportInput struct {
	StartDate string
	EndDate   string
}

type AdjustStockInput struct {
	ID        int64
	Operation string
	Quantity  float64
}

type WastageInput struct {
	ID       int64
	Quantity float64
	Reason   string
	Notes    string
}
