package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
)

// MenuItemMutationInput carries optional fields for create and update flows.
// Nil fields are left untouched on update.
type MenuItemMutationInput struct {
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	Category           *string
	Available          *bool
	PreparationMinutes *int32
	DailyQuantity      *int32
	RemainingQuantity  *int32
	Ingredients        []string
	DietaryTags        []string
}

// UpdateMenuItemInput targets an existing menu item.
type UpdateMenuItemInput struct {
	ID int64
	MenuItemMutationInput
}

// UpdateQuantitiesInput resets the daily ceiling; RemainingQuantity defaults to DailyQuantity.
type UpdateQuantitiesInput struct {
	ID                int64
	DailyQuantity     int32
	RemainingQuantity *int32
}

// ListMenuInput filters the public menu.
type ListMenuInput struct {
	Category    string
	Available   *bool
	DietaryTags []string
}

// Apply writes the non-nil fields onto item and re-validates.
func (in MenuItemMutationInput) Apply(item *domain.MenuItem) error {
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Category != nil {
		category, err := domain.ParseCategory(*in.Category)
		if err != nil {
			return err
		}
		item.Category = category
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.PreparationMinutes != nil {
		item.PreparationMinutes = *in.PreparationMinutes
	}
	if in.DailyQuantity != nil || in.RemainingQuantity != nil {
		daily := item.DailyQuantity
		if in.DailyQuantity != nil {
			daily = *in.DailyQuantity
		}
		remaining := item.RemainingQuantity
		if in.RemainingQuantity != nil {
			remaining = *in.RemainingQuantity
		} else if remaining > daily {
			remaining = daily
		}
		if err := item.SetQuantities(daily, &remaining); err != nil {
			return err
		}
	}
	if in.Ingredients != nil {
		item.Ingredients = append([]string(nil), in.Ingredients...)
	}
	if in.DietaryTags != nil {
		tags, err := ParseDietaryTags(in.DietaryTags)
		if err != nil {
			return err
		}
		item.DietaryTags = tags
	}
	return item.Validate()
}

// ParseDietaryTags converts raw tag names, rejecting unknown ones.
func ParseDietaryTags(raw []string) ([]domain.DietaryTag, error) {
	tags := make([]domain.DietaryTag, 0, len(raw))
	for _, r := range raw {
		tag, err := domain.ParseDietaryTag(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
