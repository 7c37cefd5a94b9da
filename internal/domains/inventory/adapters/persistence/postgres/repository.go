package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/campus-canteen/internal/domains/inventory/domain"
	"github.com/Apurer/campus-canteen/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists inventory items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type itemRecord struct {
	ID               int64                 `gorm:"primaryKey;column:id"`
	Ingredient       string                `gorm:"column:ingredient;uniqueIndex;size:128"`
	CurrentStock     float64               `gorm:"column:current_stock"`
	Unit             string                `gorm:"column:unit;type:varchar(16)"`
	MinimumThreshold float64               `gorm:"column:minimum_threshold"`
	MaximumCapacity  float64               `gorm:"column:maximum_capacity"`
	CostPerUnit      decimal.Decimal       `gorm:"column:cost_per_unit;type:numeric(12,2)"`
	Supplier         domain.Supplier       `gorm:"embedded;embeddedPrefix:supplier_"`
	LastRestocked    time.Time             `gorm:"column:last_restocked"`
	ExpiresAt        *time.Time            `gorm:"column:expires_at"`
	Category         string                `gorm:"column:category;type:varchar(32);index"`
	DailyUsage       float64               `gorm:"column:daily_usage"`
	Wastage          []domain.WastageEntry `gorm:"column:wastage;type:jsonb;serializer:json"`
	CreatedAt        time.Time             `gorm:"column:created_at"`
	UpdatedAt        time.Time             `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "inventory_items" }

func (r *Repository) Save(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return save(r.db.WithContext(ctx), item)
}

func save(db *gorm.DB, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("inventory item is nil")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(item)
	var err error
	if record.ID == 0 {
		err = db.Create(&record).Error
	} else {
		err = db.Save(&record).Error
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ports.ErrDuplicateIngredient
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return first(r.db.WithContext(ctx), id)
}

func first(db *gorm.DB, id int64) (*domain.Item, error) {
	var record itemRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&itemRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&itemRecord{})
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.LowStockOnly {
		query = query.Where("current_stock <= minimum_threshold")
	}
	return find(query.Order("ingredient ASC"))
}

func (r *Repository) ListLowStock(ctx context.Context) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&itemRecord{}).
		Where("current_stock <= minimum_threshold").
		Order("current_stock ASC").Order("id ASC")
	return find(query)
}

func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var raw []string
	if err := r.db.WithContext(ctx).Model(&itemRecord{}).Distinct().Pluck("category", &raw).Error; err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(raw))
	for _, c := range raw {
		used[c] = true
	}
	out := []domain.Category{}
	for _, c := range domain.Categories() {
		if used[string(c)] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Update runs mutate under a row lock.
func (r *Repository) Update(ctx context.Context, id int64, mutate func(*domain.Item) error) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var saved *domain.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := first(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if err := mutate(item); err != nil {
			return err
		}
		item.ID = id
		saved, err = save(tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func find(query *gorm.DB) ([]*domain.Item, error) {
	var records []itemRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres inventory repository not configured")
	}
	return nil
}

func toRecord(item *domain.Item) itemRecord {
	return itemRecord{
		ID:               item.ID,
		Ingredient:       strings.TrimSpace(item.Ingredient),
		CurrentStock:     item.CurrentStock,
		Unit:             string(item.Unit),
		MinimumThreshold: item.MinimumThreshold,
		MaximumCapacity:  item.MaximumCapacity,
		CostPerUnit:      item.CostPerUnit,
		Supplier:         item.Supplier,
		LastRestocked:    item.LastRestocked,
		ExpiresAt:        item.ExpiresAt,
		Category:         string(item.Category),
		DailyUsage:       item.DailyUsage,
		Wastage:          item.Wastage,
		CreatedAt:        item.CreatedAt,
	}
}

func (r itemRecord) toDomain() *domain.Item {
	return &domain.Item{
		ID:               r.ID,
		Ingredient:       r.Ingredient,
		CurrentStock:     r.CurrentStock,
		Unit:             domain.Unit(r.Unit),
		MinimumThreshold: r.MinimumThreshold,
		MaximumCapacity:  r.MaximumCapacity,
		CostPerUnit:      r.CostPerUnit,
		Supplier:         r.Supplier,
		LastRestocked:    r.LastRestocked,
		ExpiresAt:        r.ExpiresAt,
		Category:         domain.Category(r.Category),
		DailyUsage:       r.DailyUsage,
		Wastage:          r.Wastage,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
