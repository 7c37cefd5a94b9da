package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/campus-canteen/internal/domains/orders/domain"
	"github.com/Apurer/campus-canteen/internal/domains/orders/ports"
)

// OrderNumberSequence backs NextOrderNumber; migrations.Run creates it.
const OrderNumberSequence = "order_number_seq"

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db        *gorm.DB
	forUpdate bool
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// lockingReads makes GetByID take a row lock; only meaningful inside a transaction.
func (r *Repository) lockingReads() *Repository {
	return &Repository{db: r.db, forUpdate: true}
}

// orderRecord maps the order aggregate to a relational table. Line items are stored
// as a JSON document because they are only ever read with their order.
type orderRecord struct {
	ID               int64            `gorm:"primaryKey;column:id"`
	OrderNumber      string           `gorm:"column:order_number;uniqueIndex;size:32"`
	CustomerID       int64            `gorm:"column:customer_id;index"`
	Items            []lineItemRecord `gorm:"column:items;type:jsonb;serializer:json"`
	TotalAmount      decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2)"`
	Status           string           `gorm:"column:status;type:varchar(32);index"`
	Type             string           `gorm:"column:order_type;type:varchar(32)"`
	PaymentStatus    string           `gorm:"column:payment_status;type:varchar(32)"`
	PaymentMethod    string           `gorm:"column:payment_method;type:varchar(32)"`
	ScheduledFor     *time.Time       `gorm:"column:scheduled_for"`
	EstimatedReadyAt time.Time        `gorm:"column:estimated_ready_at"`
	ActualReadyAt    *time.Time       `gorm:"column:actual_ready_at"`
	TableNumber      string           `gorm:"column:table_number"`
	SpecialRequests  string           `gorm:"column:special_requests"`
	Rating           *int32           `gorm:"column:rating"`
	Feedback         string           `gorm:"column:feedback"`
	PickupCode       string           `gorm:"column:pickup_code"`
	CreatedAt        time.Time        `gorm:"column:created_at;index"`
	UpdatedAt        time.Time        `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineItemRecord struct {
	MenuItemID   int64           `json:"menuItemId"`
	Name         string          `json:"name"`
	Quantity     int32           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Instructions string          `json:"instructions,omitempty"`
}

// Save inserts when ID is zero and updates the mutable columns otherwise.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if record.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
		return record.toDomain(), nil
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"status":          record.Status,
			"payment_status":  record.PaymentStatus,
			"actual_ready_at": record.ActualReadyAt,
			"rating":          record.Rating,
			"feedback":        record.Feedback,
			"updated_at":      record.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if r.forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record orderRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns one page, newest first, and the unpaged total.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&orderRecord{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := applyFilter(r.db.WithContext(ctx).Model(&orderRecord{}), filter).
		Order("created_at DESC").Order("id DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	var records []orderRecord
	if err := page.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return toDomainList(records), total, nil
}

// ListCreatedBetween returns every order in [from, to) oldest first.
func (r *Repository) ListCreatedBetween(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := applyFilter(r.db.WithContext(ctx).Model(&orderRecord{}), ports.ListFilter{CreatedFrom: from, CreatedTo: to})
	var records []orderRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// NextOrderNumber draws from the order number sequence. Rolled back transactions leave gaps.
func (r *Repository) NextOrderNumber(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var next int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval(?)", OrderNumberSequence).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func applyFilter(query *gorm.DB, filter ports.ListFilter) *gorm.DB {
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		query = query.Where("order_type = ?", string(filter.Type))
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(filter.PaymentStatus))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}
	return query
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	items := make([]lineItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemRecord{
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Instructions: item.Instructions,
		})
	}
	return orderRecord{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		CustomerID:       order.CustomerID,
		Items:            items,
		TotalAmount:      order.TotalAmount,
		Status:           string(order.Status),
		Type:             string(order.Type),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentMethod:    string(order.PaymentMethod),
		ScheduledFor:     order.ScheduledFor,
		EstimatedReadyAt: order.EstimatedReadyAt,
		ActualReadyAt:    order.ActualReadyAt,
		TableNumber:      order.TableNumber,
		SpecialRequests:  order.SpecialRequests,
		Rating:           order.Rating,
		Feedback:         order.Feedback,
		PickupCode:       order.PickupCode,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.LineItem{
			MenuItemID:   item.MenuItemID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Instructions: item.Instructions,
		})
	}
	return &domain.Order{
		ID:               r.ID,
		OrderNumber:      r.OrderNumber,
		CustomerID:       r.CustomerID,
		Items:            items,
		TotalAmount:      r.TotalAmount,
		Status:           domain.Status(r.Status),
		Type:             domain.Type(r.Type),
		PaymentStatus:    domain.PaymentStatus(r.PaymentStatus),
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod),
		ScheduledFor:     r.ScheduledFor,
		EstimatedReadyAt: r.EstimatedReadyAt,
		ActualReadyAt:    r.ActualReadyAt,
		TableNumber:      r.TableNumber,
		SpecialRequests:  r.SpecialRequests,
		Rating:           r.Rating,
		Feedback:         r.Feedback,
		PickupCode:       r.PickupCode,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toDomainList(records []orderRecord) []*domain.Order {
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders
}
