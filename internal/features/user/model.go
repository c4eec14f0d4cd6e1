package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
	"github.com/mo-amir99/coursemarket-server-go/pkg/validation"
)

const (
	bcryptCost        = 10
	minPasswordLength = 8
	maxFullNameLength = 50
)

// User is a marketplace account. Role and status are independent: a customer
// awaiting provider approval keeps role customer with status pending_provider.
type User struct {
	types.BaseModel

	FullName     string           `gorm:"type:varchar(50);not null;column:full_name" json:"fullName"`
	Email        string           `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password     string           `gorm:"type:varchar(255);not null" json:"-"`
	Role         types.Role       `gorm:"type:varchar(20);not null;default:'customer';index" json:"role"`
	Status       types.UserStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	AvatarURL    string           `gorm:"type:varchar(500);column:avatar_url" json:"avatarUrl"`
	RefreshToken *string          `gorm:"type:text;column:refresh_token" json:"-"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// IsAdmin reports whether u holds the admin role.
func (u User) IsAdmin() bool { return u.Role == types.RoleAdmin }

// ComparePassword checks password against the stored bcrypt hash.
func (u User) ComparePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// ListFilters narrows admin user listings.
type ListFilters struct {
	Role    types.Role
	Status  types.UserStatus
	Keyword string
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FullName string
	Email    string
	Password string
	Role     types.Role
	Status   types.UserStatus
}

// UpdateInput captures mutable user fields. Nil pointers are left unchanged.
type UpdateInput struct {
	FullName  *string
	Email     *string
	Password  *string
	AvatarURL *string
	Role      *types.Role
	Status    *types.UserStatus
}

// List queries users with filters and pagination, newest first.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]User, int64, error) {
	query := db.Model(&User{})

	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if keyword := strings.TrimSpace(filters.Keyword); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := query.Order("created_at DESC").Scopes(params.Scope).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var u User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return u, ErrUserNotFound
		}
		return u, err
	}
	return u, nil
}

// GetByEmail retrieves a user by case-insensitive email.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var u User
	if err := db.First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return u, ErrUserNotFound
		}
		return u, err
	}
	return u, nil
}

// Create inserts a new user with a hashed password. Role defaults to customer.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	fullName, err := normalizeFullName(input.FullName)
	if err != nil {
		return User{}, err
	}
	email, err := validation.NormalizeEmail(input.Email)
	if err != nil {
		return User{}, ErrInvalidEmail
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		FullName: fullName,
		Email:    email,
		Password: hash,
		Role:     input.Role,
		Status:   input.Status,
	}
	if u.Role == "" {
		u.Role = types.RoleCustomer
	}
	if u.Status == "" {
		u.Status = types.UserStatusActive
	}

	if err := db.Create(&u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// Update modifies an existing user and returns the fresh row.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	current, err := Get(db, id)
	if err != nil {
		return current, err
	}

	updates := map[string]interface{}{}

	if input.FullName != nil {
		fullName, err := normalizeFullName(*input.FullName)
		if err != nil {
			return current, err
		}
		updates["full_name"] = fullName
	}
	if input.Email != nil {
		email, err := validation.NormalizeEmail(*input.Email)
		if err != nil {
			return current, ErrInvalidEmail
		}
		if email != current.Email {
			updates["email"] = email
		}
	}
	if input.Password != nil {
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return current, err
		}
		updates["password"] = hash
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := db.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return current, ErrEmailInUse
			}
			return current, err
		}
	}

	return Get(db, id)
}

// SetRefreshToken stores (or clears, when token is nil) the active refresh token.
func SetRefreshToken(db *gorm.DB, id uuid.UUID, token *string) error {
	return db.Model(&User{}).Where("id = ?", id).Update("refresh_token", token).Error
}

// CountBy counts users matching column = value.
func CountBy(db *gorm.DB, column string, value interface{}) (int64, error) {
	var count int64
	err := db.Model(&User{}).Where(column+" = ?", value).Count(&count).Error
	return count, err
}

// HashPassword validates length and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeFullName(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || len([]rune(trimmed)) > maxFullNameLength {
		return "", ErrInvalidFullName
	}
	return trimmed, nil
}
