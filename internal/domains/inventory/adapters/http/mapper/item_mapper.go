package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
)

// Item is the HTTP representation of a stocked ingredient.
type Item struct {
	ID               int64                 `json:"id"`
	Ingredient       string                `json:"ingredient"`
	CurrentStock     float64               `json:"currentStock"`
	Unit             string                `json:"unit"`
	MinimumThreshold float64               `json:"minimumThreshold"`
	MaximumCapacity  float64               `json:"maximumCapacity"`
	CostPerUnit      decimal.Decimal       `json:"costPerUnit"`
	Supplier         domain.Supplier       `json:"supplier"`
	LastRestocked    time.Time             `json:"lastRestocked"`
	ExpiryDate       *time.Time            `json:"expiryDate,omitempty"`
	Category         string                `json:"category"`
	DailyUsage       float64               `json:"dailyUsage"`
	Wastage          []domain.WastageEntry `json:"wastage"`
	LowStock         bool                  `json:"lowStock"`
}

// MutationItem captures create and update payloads while preserving field presence.
type MutationItem struct {
	Ingredient       *string          `json:"ingredient,omitempty" binding:"omitempty,max=120"`
	CurrentStock     *float64         `json:"currentStock,omitempty"`
	Unit             *string          `json:"unit,omitempty"`
	MinimumThreshold *float64         `json:"minimumThreshold,omitempty"`
	MaximumCapacity  *float64         `json:"maximumCapacity,omitempty"`
	CostPerUnit      *decimal.Decimal `json:"costPerUnit,omitempty"`
	Supplier         *domain.Supplier `json:"supplier,omitempty"`
	ExpiryDate       *time.Time       `json:"expiryDate,omitempty"`
	Category         *string          `json:"category,omitempty"`
	DailyUsage       *float64         `json:"dailyUsage,omitempty"`
}

type StockAdjustment struct {
	Operation string  `json:"operation" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"gt=0"`
}

type Wastage struct {
	Quantity float64 `json:"quantity" binding:"gt=0"`
	Reason   string  `json:"reason,omitempty"`
	Notes    string  `json:"notes,omitempty" binding:"max=500"`
}

func ToItemInput(in MutationItem) types.ItemInput {
	return types.ItemInput{
		Ingredient:       in.Ingredient,
		CurrentStock:     in.CurrentStock,
		Unit:             in.Unit,
		MinimumThreshold: in.MinimumThreshold,
		MaximumCapacity:  in.MaximumCapacity,
		CostPerUnit:      in.CostPerUnit,
		Supplier:         in.Supplier,
		ExpiresAt:        in.ExpiryDate,
		Category:         in.Category,
		DailyUsage:       in.DailyUsage,
	}
}

func FromDomainItem(item *domain.Item) Item {
	if item == nil {
		return Item{}
	}
	wastage := item.Wastage
	if wastage == nil {
		wastage = []domain.WastageEntry{}
	}
	return Item{
		ID:               item.ID,
		Ingredient:       item.Ingredient,
		CurrentStock:     item.CurrentStock,
		Unit:             string(item.Unit),
		MinimumThreshold: item.MinimumThreshold,
		MaximumCapacity:  item.MaximumCapacity,
		CostPerUnit:      item.CostPerUnit,
		Supplier:         item.Supplier,
		LastRestocked:    item.LastRestocked,
		ExpiryDate:       item.ExpiresAt,
		Category:         string(item.Category),
		DailyUsage:       item.DailyUsage,
		Wastage:          wastage,
		LowStock:         item.IsLowStock(),
	}
}

func FromDomainItems(items []*domain.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, FromDomainItem(item))
	}
	return out
}
