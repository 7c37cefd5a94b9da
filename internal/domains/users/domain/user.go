package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	ErrInvalidEmail        = errors.New("email must contain '@'")
	ErrEmptyPassword       = errors.New("password is required")
	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrNameRequired        = errors.New("first name and last name are required")
	ErrInvalidDepartment   = errors.New("department is invalid")
	ErrInvalidPreference   = errors.New("dietary preference is invalid")
	ErrStudentDetails      = errors.New("student ID and department are required for students")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrPasswordUnavailable = errors.New("password hash missing")
)

// Department is the faculty a customer belongs to.
type Department string

const (
	DepartmentICT   Department = "ICT"
	DepartmentET    Department = "ET"
	DepartmentBST   Department = "BST"
	DepartmentOther Department = "Other"
)

// ParseDepartment accepts the known departments and the empty value.
func ParseDepartment(raw string) (Department, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, d := range []Department{DepartmentICT, DepartmentET, DepartmentBST, DepartmentOther} {
		if strings.EqualFold(raw, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDepartment, raw)
}

// DietaryPreference is a profile hint shown to staff.
type DietaryPreference string

const (
	PreferenceNone       DietaryPreference = "None"
	PreferenceVegetarian DietaryPreference = "Vegetarian"
	PreferenceVegan      DietaryPreference = "Vegan"
	PreferenceHalal      DietaryPreference = "Halal"
)

// ParseDietaryPreference maps the empty value to PreferenceNone.
func ParseDietaryPreference(raw string) (DietaryPreference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PreferenceNone, nil
	}
	for _, p := range []DietaryPreference{PreferenceNone, PreferenceVegetarian, PreferenceVegan, PreferenceHalal} {
		if strings.EqualFold(raw, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreference, raw)
}

// User is a canteen account.
type User struct {
	ID                int64
	Email             string
	PasswordHash      string
	Role              auth.Role
	FirstName         string
	LastName          string
	StudentID         string
	Department        Department
	DietaryPreference DietaryPreference
	Phone             string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Profile carries the self-service fields.
type Profile struct {
	FirstName         string
	LastName          string
	StudentID         string
	Department        Department
	DietaryPreference DietaryPreference
	Phone             string
}

// NewUser builds an active account and hashes the password.
func NewUser(email, password string, role auth.Role, profile Profile) (*User, error) {
	user := &User{Role: role, Active: true}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(profile); err != nil {
		return nil, err
	}
	if role == auth.RoleStudent && (user.StudentID == "" || user.Department == "") {
		return nil, ErrStudentDetails
	}
	return user, nil
}

// NormalizeEmail trims and lowercases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetPassword replaces the stored bcrypt hash.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the supplied password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile replaces the self-service fields.
func (u *User) UpdateProfile(p Profile) error {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first == "" || last == "" {
		return ErrNameRequired
	}
	u.FirstName = first
	u.LastName = last
	u.StudentID = strings.TrimSpace(p.StudentID)
	u.Department = p.Department
	u.DietaryPreference = p.DietaryPreference
	if u.DietaryPreference == "" {
		u.DietaryPreference = PreferenceNone
	}
	u.Phone = strings.TrimSpace(p.Phone)
	return nil
}

// ToggleActive flips the account status and reports the new value.
func (u *User) ToggleActive() bool {
	u.Active = !u.Active
	return u.Active
}

// SetRole changes the account role.
func (u *User) SetRole(role auth.Role) error {
	if !role.Valid() {
		return auth.ErrInvalidRole
	}
	u.Role = role
	return nil
}

// Principal returns the caller identity for this account.
func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.PasswordHash == "" {
		return ErrPasswordUnavailable
	}
	if !u.Role.Valid() {
		return auth.ErrInvalidRole
	}
	if u.FirstName == "" || u.LastName == "" {
		return ErrNameRequired
	}
	return nil
}

// Clone returns a copy safe to hand across adapters.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
