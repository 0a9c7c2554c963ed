// Package report aggregates completed orders into the sales figures a
// store dashboard shows. Reports are read-only and tenant-scoped.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

// Service implements reporting queries against the persistence gateway
type Service struct {
	repo repository.Factory
}

// NewService creates a report service
func NewService(repo repository.Factory) *Service {
	return &Service{repo: repo}
}

// ProductSales is the aggregated sales of one product over a period
type ProductSales struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// DailySalesReport summarizes one day of completed orders
type DailySalesReport struct {
	Date         string          `json:"date"`
	OrderCount   int             `json:"order_count"`
	ItemsSold    int             `json:"items_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageOrder decimal.Decimal `json:"average_order"`
	TopProducts  []ProductSales  `json:"top_products"`
}

// SalesSummary totals completed orders over a date range
type SalesSummary struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	OrderCount   int             `json:"order_count"`
	ItemsSold    int             `json:"items_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageOrder decimal.Decimal `json:"average_order"`
}

const topProductLimit = 10

// DailySales reports the completed orders of one calendar day
func (s *Service) DailySales(ctx context.Context, date time.Time) (*DailySalesReport, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("reports require a store context")
	}

	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	orders, err := gw.Orders().ListCompletedBetween(ctx, *t.StoreID, from, to)
	if err != nil {
		return nil, apperr.Persistence(err, "list completed orders")
	}

	ids := make([]uuid.UUID, 0, len(orders))
	revenue := decimal.Zero
	for _, o := range orders {
		ids = append(ids, o.ID)
		revenue = revenue.Add(o.Total)
	}
	items, err := gw.OrderItems().ListByOrders(ctx, ids)
	if err != nil {
		return nil, apperr.Persistence(err, "list order items")
	}

	itemsSold := 0
	perProduct := map[uuid.UUID]*ProductSales{}
	for _, it := range items {
		itemsSold += it.Quantity
		ps, ok := perProduct[it.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
			perProduct[it.ProductID] = ps
		}
		ps.QuantitySold += it.Quantity
		ps.Revenue = ps.Revenue.Add(it.TotalPrice())
	}

	top := make([]ProductSales, 0, len(perProduct))
	for _, ps := range perProduct {
		top = append(top, *ps)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].QuantitySold != top[j].QuantitySold {
			return top[i].QuantitySold > top[j].QuantitySold
		}
		return top[i].ProductName < top[j].ProductName
	})
	if len(top) > topProductLimit {
		top = top[:topProductLimit]
	}

	report := &DailySalesReport{
		Date:        from.Format("2006-01-02"),
		OrderCount:  len(orders),
		ItemsSold:   itemsSold,
		Revenue:     revenue,
		TopProducts: top,
	}
	if len(orders) > 0 {
		report.AverageOrder = revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	} else {
		report.AverageOrder = decimal.Zero
	}
	return report, nil
}

// Summary totals completed orders between from (inclusive) and to
// (exclusive of the following midnight).
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("reports require a store context")
	}
	if to.Before(from) {
		return nil, apperr.InvalidOperation("the range end precedes its start")
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	orders, err := gw.Orders().ListCompletedBetween(ctx, *t.StoreID, start, end)
	if err != nil {
		return nil, apperr.Persistence(err, "list completed orders")
	}

	ids := make([]uuid.UUID, 0, len(orders))
	revenue := decimal.Zero
	for _, o := range orders {
		ids = append(ids, o.ID)
		revenue = revenue.Add(o.Total)
	}
	items, err := gw.OrderItems().ListByOrders(ctx, ids)
	if err != nil {
		return nil, apperr.Persistence(err, "list order items")
	}
	itemsSold := 0
	for _, it := range items {
		itemsSold += it.Quantity
	}

	summary := &SalesSummary{
		From:       start.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
		OrderCount: len(orders),
		ItemsSold:  itemsSold,
		Revenue:    revenue,
	}
	if len(orders) > 0 {
		summary.AverageOrder = revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	} else {
		summary.AverageOrder = decimal.Zero
	}
	return summary, nil
}
