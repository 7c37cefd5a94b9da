package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	catalogports "github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
	"github.com/Apurer/campus-canteen/internal/domains/orders/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Analytics aggregates orders in the requested window. Cancelled orders count only
// towards the status distribution.
func (s *Service) Analytics(ctx context.Context, caller auth.Principal, input types.AnalyticsInput) (*types.AnalyticsReport, error) {
	if err := auth.Authorize(caller, auth.OpViewAnalytics); err != nil {
		return nil, err
	}
	from, to, err := s.reportWindow(input)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, mapError(err)
	}

	report := &types.AnalyticsReport{From: from, To: to, GeneratedAt: s.now()}
	daily := map[string]*types.DailySales{}
	statuses := map[domain.Status]int64{}
	methods := map[domain.PaymentMethod]*types.PaymentMethodRevenue{}
	items := map[int64]*types.PopularItem{}

	for _, o := range orders {
		statuses[o.Status]++
		if o.Status == domain.StatusCancelled {
			continue
		}
		day := o.CreatedAt.In(s.location).Format(dateLayout)
		d, ok := daily[day]
		if !ok {
			d = &types.DailySales{Date: day, TotalSales: decimal.Zero}
			daily[day] = d
		}
		d.TotalSales = d.TotalSales.Add(o.TotalAmount)
		d.OrderCount++

		m, ok := methods[o.PaymentMethod]
		if !ok {
			m = &types.PaymentMethodRevenue{PaymentMethod: o.PaymentMethod, TotalRevenue: decimal.Zero}
			methods[o.PaymentMethod] = m
		}
		m.TotalRevenue = m.TotalRevenue.Add(o.TotalAmount)
		m.Count++

		for _, line := range o.Items {
			p, ok := items[line.MenuItemID]
			if !ok {
				p = &types.PopularItem{MenuItemID: line.MenuItemID, TotalRevenue: decimal.Zero}
				items[line.MenuItemID] = p
			}
			p.TotalQuantity += int64(line.Quantity)
			p.TotalRevenue = p.TotalRevenue.Add(line.Subtotal())
		}
	}

	report.DailySales = make([]types.DailySales, 0, len(daily))
	for _, d := range daily {
		report.DailySales = append(report.DailySales, *d)
	}
	sort.Slice(report.DailySales, func(i, j int) bool {
		return report.DailySales[i].Date < report.DailySales[j].Date
	})

	report.StatusDistribution = make([]types.StatusCount, 0, len(statuses))
	for _, status := range domain.Statuses() {
		if n := statuses[status]; n > 0 {
			report.StatusDistribution = append(report.StatusDistribution, types.StatusCount{Status: status, Count: n})
		}
	}

	report.PaymentMethodRevenue = make([]types.PaymentMethodRevenue, 0, len(methods))
	for _, method := range domain.PaymentMethods() {
		if m, ok := methods[method]; ok {
			report.PaymentMethodRevenue = append(report.PaymentMethodRevenue, *m)
		}
	}

	popular, err := s.popularItems(ctx, items)
	if err != nil {
		return nil, mapError(err)
	}
	report.PopularItems = popular
	return report, nil
}

// popularItems ranks by quantity and joins the current menu name. Items no longer on the
// menu are dropped before the top ten are taken.
func (s *Service) popularItems(ctx context.Context, totals map[int64]*types.PopularItem) ([]types.PopularItem, error) {
	ranked := make([]*types.PopularItem, 0, len(totals))
	for _, p := range totals {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalQuantity != ranked[j].TotalQuantity {
			return ranked[i].TotalQuantity > ranked[j].TotalQuantity
		}
		return ranked[i].MenuItemID < ranked[j].MenuItemID
	})

	out := make([]types.PopularItem, 0, PopularItemsLimit)
	for _, p := range ranked {
		if len(out) == PopularItemsLimit {
			break
		}
		item, err := s.menu.GetByID(ctx, p.MenuItemID)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		p.Name = item.Name
		out = append(out, *p)
	}
	return out, nil
}

// reportWindow returns [from, to). Date-only end values cover the whole day.
func (s *Service) reportWindow(input types.AnalyticsInput) (*time.Time, *time.Time, error) {
	start, end := strings.TrimSpace(input.StartDate), strings.TrimSpace(input.EndDate)
	if start == "" || end == "" {
		return nil, nil, nil
	}
	from, _, err := s.parseBound(start)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: startDate: %w", ErrInvalidInput, err)
	}
	to, dateOnly, err := s.parseBound(end)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: endDate: %w", ErrInvalidInput, err)
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1)
	} else {
		to = to.Add(time.Microsecond)
	}
	if !from.Before(to) {
		return nil, nil, fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidInput)
	}
	return &from, &to, nil
}

func (s *Service) parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, s.location); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, errors.New("expected YYYY-MM-DD or RFC 3339")
	}
	return t, false, nil
}
