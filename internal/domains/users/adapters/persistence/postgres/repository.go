package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/domains/users/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

const uniqueViolation = "23505"

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// Save inserts when ID is zero and overwrites the row otherwise.
func (r *Repository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(user)
	var err error
	if record.ID == 0 {
		err = r.db.WithContext(ctx).Create(&record).Error
	} else {
		err = r.db.WithContext(ctx).Save(&record).Error
	}
	if err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ExistsStudentID(ctx context.Context, studentID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).
		Where("student_id = ?", strings.TrimSpace(studentID)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns users newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&userRecord{})
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.Department != "" {
		query = query.Where("department = ?", string(filter.Department))
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	var records []userRecord
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

// translate maps unique index violations onto the port's conflict errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "student_id") {
			return ports.ErrStudentIDTaken
		}
		return ports.ErrEmailTaken
	}
	return err
}

func toRecord(user *domain.User) userRecord {
	record := userRecord{
		ID:                user.ID,
		Email:             user.Email,
		PasswordHash:      user.PasswordHash,
		Role:              string(user.Role),
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Department:        string(user.Department),
		DietaryPreference: string(user.DietaryPreference),
		Phone:             user.Phone,
		Active:            user.Active,
		CreatedAt:         user.CreatedAt,
	}
	if user.StudentID != "" {
		studentID := user.StudentID
		record.StudentID = &studentID
	}
	return record
}

func (r userRecord) toDomain() *domain.User {
	user := &domain.User{
		ID:                r.ID,
		Email:             r.Email,
		PasswordHash:      r.PasswordHash,
		Role:              auth.Role(r.Role),
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Department:        domain.Department(r.Department),
		DietaryPreference: domain.DietaryPreference(r.DietaryPreference),
		Phone:             r.Phone,
		Active:            r.Active,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.StudentID != nil {
		user.StudentID = *r.StudentID
	}
	return user
}

func toDomainList(records []userRecord) []*domain.User {
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users
}
