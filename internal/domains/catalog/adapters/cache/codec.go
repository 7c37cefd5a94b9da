package cache

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
)

// cachedItem is the JSON shape stored in Redis.
type cachedItem struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	Available          bool            `json:"available"`
	PreparationMinutes int32           `json:"preparationMinutes"`
	DailyQuantity      int32           `json:"dailyQuantity"`
	RemainingQuantity  int32           `json:"remainingQuantity"`
	Popularity         int64           `json:"popularity"`
	Ingredients        []string        `json:"ingredients,omitempty"`
	DietaryTags        []string        `json:"dietaryTags,omitempty"`
}

func fromDomain(item *domain.MenuItem) cachedItem {
	tags := make([]string, 0, len(item.DietaryTags))
	for _, tag := range item.DietaryTags {
		tags = append(tags, string(tag))
	}
	return cachedItem{
		ID:                 item.ID,
		Name:               item.Name,
		Description:        item.Description,
		Price:              item.Price,
		Category:           string(item.Category),
		Available:          item.Available,
		PreparationMinutes: item.PreparationMinutes,
		DailyQuantity:      item.DailyQuantity,
		RemainingQuantity:  item.RemainingQuantity,
		Popularity:         item.Popularity,
		Ingredients:        item.Ingredients,
		DietaryTags:        tags,
	}
}

func (c cachedItem) toDomain() *domain.MenuItem {
	tags := make([]domain.DietaryTag, 0, len(c.DietaryTags))
	for _, tag := range c.DietaryTags {
		tags = append(tags, domain.DietaryTag(tag))
	}
	return &domain.MenuItem{
		ID:                 c.ID,
		Name:               c.Name,
		Description:        c.Description,
		Price:              c.Price,
		Category:           domain.Category(c.Category),
		Available:          c.Available,
		PreparationMinutes: c.PreparationMinutes,
		DailyQuantity:      c.DailyQuantity,
		RemainingQuantity:  c.RemainingQuantity,
		Popularity:         c.Popularity,
		Ingredients:        append([]string(nil), c.Ingredients...),
		DietaryTags:        tags,
	}
}
