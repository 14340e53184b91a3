package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StringList stores a set of strings as a JSON column so the same model
// works against postgres and the sqlite driver used in tests.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for StringList")
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

type Account struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey"       json:"id"`
	Email                  string     `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash           string     `gorm:"not null"                   json:"-"`
	Role                   string     `gorm:"not null"                   json:"role"`
	ExtraPermissions       StringList `gorm:"type:text"                  json:"extra_permissions"`
	Active                 bool       `gorm:"not null;default:true"      json:"active"`
	PasswordChangeRequired bool       `gorm:"not null;default:false"     json:"password_change_required"`
	LastLoginAt            *time.Time `json:"last_login_at"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type RefreshSession struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	TokenHash string    `gorm:"uniqueIndex;not null"    json:"-"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null" json:"account_id"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
	ExpiresAt time.Time `gorm:"not null"                json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"  json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type ServiceAccount struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"   json:"id"`
	Name       string     `gorm:"uniqueIndex;not null"   json:"name"`
	ClientID   string     `gorm:"uniqueIndex;not null"   json:"client_id"`
	SecretHash string     `gorm:"not null"               json:"-"`
	Service    string     `gorm:"not null"               json:"service"`
	Scopes     StringList `gorm:"type:text"              json:"scopes"`
	Active     bool       `gorm:"not null;default:true"  json:"active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
