package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
)

// MenuItem is the HTTP representation of a dish.
type MenuItem struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Category          string          `json:"category"`
	IsAvailable       bool            `json:"isAvailable"`
	PreparationTime   int32           `json:"preparationTime"`
	DailyQuantity     int32           `json:"dailyQuantity"`
	RemainingQuantity int32           `json:"remainingQuantity"`
	Popularity        int64           `json:"popularity"`
	Ingredients       []string        `json:"ingredients"`
	DietaryTags       []string        `json:"dietaryTags"`
}

// MutationMenuItem captures create and update payloads while preserving field presence.
type MutationMenuItem struct {
	Name              *string          `json:"name,omitempty" binding:"omitempty,max=120"`
	Description       *string          `json:"description,omitempty" binding:"omitempty,max=1000"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Category          *string          `json:"category,omitempty"`
	IsAvailable       *bool            `json:"isAvailable,omitempty"`
	PreparationTime   *int32           `json:"preparationTime,omitempty"`
	DailyQuantity     *int32           `json:"dailyQuantity,omitempty"`
	RemainingQuantity *int32           `json:"remainingQuantity,omitempty"`
	Ingredients       []string         `json:"ingredients,omitempty"`
	DietaryTags       []string         `json:"dietaryTags,omitempty"`
}

// QuantityUpdate resets the daily ceiling; remaining defaults to the new daily quantity.
type QuantityUpdate struct {
	DailyQuantity     *int32 `json:"dailyQuantity" binding:"required"`
	RemainingQuantity *int32 `json:"remainingQuantity,omitempty"`
}

func ToMutationInput(in MutationMenuItem) types.MenuItemMutationInput {
	return types.MenuItemMutationInput{
		Name:               in.Name,
		Description:        in.Description,
		Price:              in.Price,
		Category:           in.Category,
		Available:          in.IsAvailable,
		PreparationMinutes: in.PreparationTime,
		DailyQuantity:      in.DailyQuantity,
		RemainingQuantity:  in.RemainingQuantity,
		Ingredients:        in.Ingredients,
		DietaryTags:        in.DietaryTags,
	}
}

func FromDomainMenuItem(item *domain.MenuItem) MenuItem {
	if item == nil {
		return MenuItem{}
	}
	tags := make([]string, 0, len(item.DietaryTags))
	for _, t := range item.DietaryTags {
		tags = append(tags, string(t))
	}
	ingredients := item.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return MenuItem{
		ID:                item.ID,
		Name:              item.Name,
		Description:       item.Description,
		Price:             item.Price,
		Category:          string(item.Category),
		IsAvailable:       item.Available,
		PreparationTime:   item.PreparationMinutes,
		DailyQuantity:     item.DailyQuantity,
		RemainingQuantity: item.RemainingQuantity,
		Popularity:        item.Popularity,
		Ingredients:       ingredients,
		DietaryTags:       tags,
	}
}

func FromDomainMenuItems(items []*domain.MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromDomainMenuItem(item))
	}
	return out
}
