package models

import "time"

// HomepageContentID is the fixed primary key of the singleton homepage row.
const HomepageContentID int64 = 1

type HomepageContent struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	WelcomeMessage string    `json:"welcome_message" gorm:"type:text"`
	Image          *string   `json:"image,omitempty"` // blob key, nil when unset
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (HomepageContent) TableName() string {
	return "homepage_content"
}
