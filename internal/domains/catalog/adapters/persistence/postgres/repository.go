package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/campus-canteen/internal/domains/catalog/domain"
	"github.com/Apurer/campus-canteen/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists menu items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations). Passing a transaction handle scopes every
// call to that transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// menuItemRecord maps the menu item aggregate to a relational table.
type menuItemRecord struct {
	ID                 int64           `gorm:"primaryKey;column:id"`
	Name               string          `gorm:"column:name;not null"`
	Description        string          `gorm:"column:description"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Category           string          `gorm:"column:category;type:varchar(32);index"`
	Available          bool            `gorm:"column:available;index"`
	PreparationMinutes int32           `gorm:"column:preparation_minutes"`
	DailyQuantity      int32           `gorm:"column:daily_quantity"`
	RemainingQuantity  int32           `gorm:"column:remaining_quantity"`
	Popularity         int64           `gorm:"column:popularity;index"`
	Ingredients        pq.StringArray  `gorm:"column:ingredients;type:text[]"`
	DietaryTags        pq.StringArray  `gorm:"column:dietary_tags;type:text[]"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (menuItemRecord) TableName() string { return "menu_items" }

// Save inserts or updates a menu item.
func (r *Repository) Save(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(item)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":                record.Name,
				"description":         record.Description,
				"price":               record.Price,
				"category":            record.Category,
				"available":           record.Available,
				"preparation_minutes": record.PreparationMinutes,
				"ingredients":         record.Ingredients,
				"dietary_tags":        record.DietaryTags,
				"updated_at":          gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a menu item by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record menuItemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes a menu item by identifier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&menuItemRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns menu items matching the filter, most popular first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&menuItemRecord{})
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}
	if len(filter.DietaryTags) > 0 {
		tags := make(pq.StringArray, 0, len(filter.DietaryTags))
		for _, tag := range filter.DietaryTags {
			tags = append(tags, string(tag))
		}
		query = query.Where("dietary_tags @> ?", tags)
	}
	var records []menuItemRecord
	if err := query.Order("popularity DESC").Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.MenuItem, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

// Reserve decrements remaining stock in a single conditional UPDATE.
func (r *Repository) Reserve(ctx context.Context, id int64, qty int32) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, domain.ErrInvalidReservation
	}
	result := r.db.WithContext(ctx).Model(&menuItemRecord{}).
		Where("id = ? AND available = ? AND remaining_quantity >= ?", id, true, qty).
		Updates(map[string]any{
			"remaining_quantity": gorm.Expr("remaining_quantity - ?", qty),
			"popularity":         gorm.Expr("popularity + ?", qty),
			"updated_at":         gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return r.GetByID(ctx, id)
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.CheckReservation(qty); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w for %s", domain.ErrInsufficientQuantity, current.Name)
}

// Release returns stock, never exceeding the daily quantity.
func (r *Repository) Release(ctx context.Context, id int64, qty int32) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return r.GetByID(ctx, id)
	}
	result := r.db.WithContext(ctx).Model(&menuItemRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"remaining_quantity": gorm.Expr("LEAST(daily_quantity, remaining_quantity + ?)", qty),
			"updated_at":         gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SetQuantities replaces the daily quantity and, when given, the remaining counter.
func (r *Repository) SetQuantities(ctx context.Context, id int64, daily int32, remaining *int32) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if daily < 0 {
		return nil, domain.ErrInvalidDailyQuantity
	}
	next := gorm.Expr("LEAST(remaining_quantity, ?)", daily)
	if remaining != nil {
		if *remaining < 0 || *remaining > daily {
			return nil, domain.ErrRemainingOutOfRange
		}
		next = gorm.Expr("?", *remaining)
	}
	result := r.db.WithContext(ctx).Model(&menuItemRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"daily_quantity":     daily,
			"remaining_quantity": next,
			"updated_at":         gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// ResetRemaining refills every menu item to its daily quantity.
func (r *Repository) ResetRemaining(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Model(&menuItemRecord{}).
		Where("remaining_quantity <> daily_quantity").
		Updates(map[string]any{
			"remaining_quantity": gorm.Expr("daily_quantity"),
			"updated_at":         gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres menu repository not configured")
	}
	return nil
}

func toRecord(item *domain.MenuItem) menuItemRecord {
	tags := make(pq.StringArray, 0, len(item.DietaryTags))
	for _, tag := range item.DietaryTags {
		tags = append(tags, string(tag))
	}
	return menuItemRecord{
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
		Ingredients:        pq.StringArray(append([]string{}, item.Ingredients...)),
		DietaryTags:        tags,
	}
}

func (r menuItemRecord) toDomain() *domain.MenuItem {
	tags := make([]domain.DietaryTag, 0, len(r.DietaryTags))
	for _, tag := range r.DietaryTags {
		tags = append(tags, domain.DietaryTag(tag))
	}
	return &domain.MenuItem{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		Category:           domain.Category(r.Category),
		Available:          r.Available,
		PreparationMinutes: r.PreparationMinutes,
		DailyQuantity:      r.DailyQuantity,
		RemainingQuantity:  r.RemainingQuantity,
		Popularity:         r.Popularity,
		Ingredients:        append([]string{}, r.Ingredients...),
		DietaryTags:        tags,
	}
}
