package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry created by a user.
type Project struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	UUID                string `gorm:"size:36;index" json:"uuid"`
	UserID              *uint  `gorm:"index" json:"user_id"`
	Name                string `gorm:"size:150;index;not null" json:"name"`
	Category            string `gorm:"size:150" json:"category"`
	Description         string `gorm:"type:text;not null" json:"description"`
	Technologies        string `gorm:"type:text" json:"technologies"`
	DetailedDescription string `gorm:"type:text" json:"detailed_description"`
	MainImage           string `gorm:"size:512" json:"main_image"`
	// Images is a JSON array of additional image URLs serialized to text.
	Images    string           `gorm:"type:text" json:"-"`
	Likes     int              `gorm:"default:0" json:"likes"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	User      *User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Comments  []ProjectComment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// ProjectComment is a reply left on a project.
type ProjectComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ProjectID uint      `gorm:"index;not null" json:"project_id"`
	Feedback  string    `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return nil
}

// ImageList decodes the serialized additional image URLs.
func (p *Project) ImageList() []string {
	return decodeImageList(p.Images)
}

// SetImageList serializes the additional image URLs.
func (p *Project) SetImageList(urls []string) error {
	s, err := encodeImageList(urls)
	if err != nil {
		return err
	}
	p.Images = s
	return nil
}

func decodeImageList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func encodeImageList(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
