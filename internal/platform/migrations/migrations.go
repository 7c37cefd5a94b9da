package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderNumberSequence feeds order numbers; the orders adapter draws from it with nextval.
const OrderNumberSequence = "order_number_seq"

// Run applies the schema for the bounded contexts. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&menuItemRecord{},
		&orderRecord{},
		&userRecord{},
		&sessionRecord{},
		&inventoryItemRecord{},
	); err != nil {
		return err
	}
	return db.Exec("CREATE SEQUENCE IF NOT EXISTS " + OrderNumberSequence).Error
}

// Menu schema mirrors the catalog Postgres adapter. Stock counters are guarded by
// check constraints so a conditional update can never drive them negative.
type menuItemRecord struct {
	ID                 int64           `gorm:"primaryKey;column:id"`
	Name               string          `gorm:"column:name;not null"`
	Description        string          `gorm:"column:description"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;check:chk_menu_items_price,price >= 0"`
	Category           string          `gorm:"column:category;type:varchar(32);index"`
	Available          bool            `gorm:"column:available;index"`
	PreparationMinutes int32           `gorm:"column:preparation_minutes"`
	DailyQuantity      int32           `gorm:"column:daily_quantity;check:chk_menu_items_daily,daily_quantity >= 0"`
	RemainingQuantity  int32           `gorm:"column:remaining_quantity;check:chk_menu_items_remaining,remaining_quantity >= 0"`
	Popularity         int64           `gorm:"column:popularity;index"`
	Ingredients        pq.StringArray  `gorm:"column:ingredients;type:text[]"`
	DietaryTags        pq.StringArray  `gorm:"column:dietary_tags;type:text[]"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (menuItemRecord) TableName() string { return "menu_items" }

// Order schema mirrors the orders Postgres adapter; line items live in a jsonb column.
type orderRecord struct {
	ID               int64           `gorm:"primaryKey;column:id"`
	OrderNumber      string          `gorm:"column:order_number;uniqueIndex;size:32"`
	CustomerID       int64           `gorm:"column:customer_id;index"`
	Items            string          `gorm:"column:items;type:jsonb"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Status           string          `gorm:"column:status;type:varchar(32);index"`
	Type             string          `gorm:"column:order_type;type:varchar(32)"`
	PaymentStatus    string          `gorm:"column:payment_status;type:varchar(32)"`
	PaymentMethod    string          `gorm:"column:payment_method;type:varchar(32)"`
	ScheduledFor     *time.Time      `gorm:"column:scheduled_for"`
	EstimatedReadyAt time.Time       `gorm:"column:estimated_ready_at"`
	ActualReadyAt    *time.Time      `gorm:"column:actual_ready_at"`
	TableNumber      string          `gorm:"column:table_number"`
	SpecialRequests  string          `gorm:"column:special_requests"`
	Rating           *int32          `gorm:"column:rating;check:chk_orders_rating,rating BETWEEN 1 AND 5"`
	Feedback         string          `gorm:"column:feedback"`
	PickupCode       string          `gorm:"column:pickup_code"`
	CreatedAt        time.Time       `gorm:"column:created_at;index"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// User schema mirrors the users Postgres adapter. Student IDs are NULL for non-students.
type userRecord struct {
	ID                int64     `gorm:"primaryKey;column:id"`
	Email             string    `gorm:"column:email;uniqueIndex;size:255"`
	PasswordHash      string    `gorm:"column:password_hash"`
	Role              string    `gorm:"column:role;type:varchar(16);index"`
	FirstName         string    `gorm:"column:first_name"`
	LastName          string    `gorm:"column:last_name"`
	StudentID         *string   `gorm:"column:student_id;uniqueIndex"`
	Department        string    `gorm:"column:department;type:varchar(16)"`
	DietaryPreference string    `gorm:"column:dietary_preference;type:varchar(16)"`
	Phone             string    `gorm:"column:phone"`
	Active            bool      `gorm:"column:active;index"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:64"`
	UserID    int64     `gorm:"column:user_id;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Inventory schema mirrors the inventory Postgres adapter.
type inventoryItemRecord struct {
	ID               int64           `gorm:"primaryKey;column:id"`
	Ingredient       string          `gorm:"column:ingredient;uniqueIndex;size:128"`
	CurrentStock     float64         `gorm:"column:current_stock;check:chk_inventory_stock,current_stock >= 0"`
	Unit             string          `gorm:"column:unit;type:varchar(16)"`
	MinimumThreshold float64         `gorm:"column:minimum_threshold"`
	MaximumCapacity  float64         `gorm:"column:maximum_capacity"`
	CostPerUnit      decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,2)"`
	SupplierName     string          `gorm:"column:supplier_name"`
	SupplierContact  string          `gorm:"column:supplier_contact"`
	SupplierEmail    string          `gorm:"column:supplier_email"`
	LastRestocked    time.Time       `gorm:"column:last_restocked"`
	ExpiresAt        *time.Time      `gorm:"column:expires_at"`
	Category         string          `gorm:"column:category;type:varchar(32);index"`
	DailyUsage       float64         `gorm:"column:daily_usage"`
	Wastage          string          `gorm:"column:wastage;type:jsonb;default:'[]'"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (inventoryItemRecord) TableName() string { return "inventory_items" }
