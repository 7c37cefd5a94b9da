package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type WastageReason string

const (
	ReasonExpired    WastageReason = "expired"
	ReasonDamaged    WastageReason = "damaged"
	ReasonSpoiled    WastageReason = "spoiled"
	ReasonOvercooked WastageReason = "overcooked"
	ReasonOther      WastageReason = "other"
)

func ParseWastageReason(raw string) (WastageReason, error) {
	switch r := WastageReason(strings.ToLower(strings.TrimSpace(raw))); r {
	case ReasonExpired, ReasonDamaged, ReasonSpoiled, ReasonOvercooked, ReasonOther:
		return r, nil
	case "":
		return ReasonOther, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReason, raw)
}

// WastageEntry records stock thrown away.
type WastageEntry struct {
	RecordedAt time.Time     `json:"date"`
	Quantity   float64       `json:"quantity"`
	Reason     WastageReason `json:"reason"`
	Notes      string        `json:"notes,omitempty"`
}

type ReasonBreakdown struct {
	Reason   WastageReason   `json:"reason"`
	Quantity float64         `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

type IngredientWastage struct {
	Ingredient      string            `json:"ingredient"`
	Unit            Unit              `json:"unit"`
	TotalWastage    float64           `json:"totalWastage"`
	TotalCost       decimal.Decimal   `json:"totalCost"`
	ReasonBreakdown []ReasonBreakdown `json:"reasonBreakdown"`
}

// WastageReport totals wastage per ingredient, costliest first.
type WastageReport struct {
	Items     []IngredientWastage `json:"wastageReport"`
	TotalCost decimal.Decimal     `json:"totalWastageCost"`
}

// BuildWastageReport aggregates entries recorded within [from, to]. Nil bounds are open.
func BuildWastageReport(items []*Item, from, to *time.Time) WastageReport {
	report := WastageReport{Items: []IngredientWastage{}, TotalCost: decimal.Zero}
	for _, item := range items {
		row := IngredientWastage{Ingredient: item.Ingredient, Unit: item.Unit, TotalCost: decimal.Zero}
		byReason := map[WastageReason]*ReasonBreakdown{}
		var order []WastageReason
		for _, entry := range item.Wastage {
			if from != nil && entry.RecordedAt.Before(*from) {
				continue
			}
			if to != nil && entry.RecordedAt.After(*to) {
				continue
			}
			cost := decimal.NewFromFloat(entry.Quantity).Mul(item.CostPerUnit)
			breakdown, ok := byReason[entry.Reason]
			if !ok {
				breakdown = &ReasonBreakdown{Reason: entry.Reason, Cost: decimal.Zero}
				byReason[entry.Reason] = breakdown
				order = append(order, entry.Reason)
			}
			breakdown.Quantity += entry.Quantity
			breakdown.Cost = breakdown.Cost.Add(cost)
			row.TotalWastage += entry.Quantity
			row.TotalCost = row.TotalCost.Add(cost)
		}
		if len(order) == 0 {
			continue
		}
		for _, reason := range order {
			row.ReasonBreakdown = append(row.ReasonBreakdown, *byReason[reason])
		}
		report.Items = append(report.Items, row)
		report.TotalCost = report.TotalCost.Add(row.TotalCost)
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].TotalCost.GreaterThan(report.Items[j].TotalCost)
	})
	return report
}
