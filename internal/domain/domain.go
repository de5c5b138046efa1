package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is an account plus its health profile: allergy terms matched against
// medicine compositions, and favorite catalog entries.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name         string `gorm:"column:name;type:varchar(100);not null"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	Phone        string `gorm:"column:phone;type:varchar(20)"`
	Role         Role   `gorm:"column:role;type:varchar(20);not null;default:'user'"`

	Allergies []string    `gorm:"column:allergies;serializer:json"`
	Favorites []uuid.UUID `gorm:"column:favorites;serializer:json"`

	IsActive         bool       `gorm:"column:is_active;default:true;index"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "auth.users"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// HasAllergy reports whether the user already lists the term, ignoring case
// and surrounding whitespace.
func (u *User) HasAllergy(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	for _, a := range u.Allergies {
		if strings.ToLower(a) == t {
			return true
		}
	}
	return false
}

// AddAllergy appends a trimmed allergy term as a set-add: blanks and
// case-insensitive duplicates are rejected. Returns whether the list changed.
func (u *User) AddAllergy(term string) bool {
	t := strings.TrimSpace(term)
	if t == "" || u.HasAllergy(t) {
		return false
	}
	u.Allergies = append(u.Allergies, t)
	return true
}

// RemoveAllergy drops a term from the allergy list if present.
func (u *User) RemoveAllergy(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	for i, a := range u.Allergies {
		if strings.ToLower(a) == t {
			u.Allergies = append(u.Allergies[:i], u.Allergies[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleFavorite adds the medicine to favorites, or removes it when already
// present. Returns true when the medicine ended up favorited.
func (u *User) ToggleFavorite(medicineID uuid.UUID) bool {
	for i, id := range u.Favorites {
		if id == medicineID {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			return false
		}
	}
	u.Favorites = append(u.Favorites, medicineID)
	return true
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(20);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID  string `gorm:"column:request_id;type:varchar(50);index"`
	StatusCode int    `gorm:"column:status_code"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}
