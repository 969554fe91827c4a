package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Recipe status values. A regular user's recipe starts pending; admin and
// super-admin recipes are approved at creation.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// StringList stores an ordered list of strings as a JSON column, which works
// on both postgres and sqlite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
	return json.Unmarshal(data, l)
}

type Recipe struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string     `json:"title" gorm:"not null;size:200"`
	Description string     `json:"description" gorm:"type:text"`
	Ingredients StringList `json:"ingredients" gorm:"type:text"`
	Steps       string     `json:"steps" gorm:"type:text"`
	Servings    int        `json:"servings" gorm:"default:2"`
	Image       *string    `json:"image,omitempty"` // blob key, nil when unset
	AuthorID    string     `json:"author_id" gorm:"type:uuid;not null;index"`
	Status      string     `json:"status" gorm:"default:'pending';not null;index"`
	IsSignature bool       `json:"is_signature" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Author  User     `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Ratings []Rating `json:"ratings,omitempty" gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string {
	return "recipes"
}
