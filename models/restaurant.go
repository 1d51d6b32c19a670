package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant is the parallel legacy domain entity, same shape as Project.
type Restaurant struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	UUID                string `gorm:"size:36;index" json:"uuid"`
	Name                string `gorm:"size:150;index;not null" json:"name"`
	City                string `gorm:"size:150" json:"city"`
	Description         string `gorm:"type:text;not null" json:"description"`
	Menu                string `gorm:"type:text" json:"menu"`
	DetailedDescription string `gorm:"type:text" json:"detailed_description"`
	MainImage           string `gorm:"size:512" json:"main_image"`
	// Images is a JSON array of additional image URLs serialized to text.
	Images    string              `gorm:"type:text" json:"-"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Comments  []RestaurantComment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// RestaurantComment is a reply left on a restaurant.
type RestaurantComment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	RestaurantID uint      `gorm:"index;not null" json:"restaurant_id"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time `json:"created_at"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

// ImageList decodes the serialized additional image URLs.
func (r *Restaurant) ImageList() []string {
	return decodeImageList(r.Images)
}

// SetImageList serializes the additional image URLs.
func (r *Restaurant) SetImageList(urls []string) error {
	s, err := encodeImageList(urls)
	if err != nil {
		return err
	}
	r.Images = s
	return nil
}
