package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UUID          string `gorm:"size:36;index" json:"uuid"`
	Name          string `gorm:"size:100;index;not null" json:"name"`
	Email         string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"size:255" json:"-"`
	AvatarURL     string `gorm:"size:512" json:"avatar_url"`
	Description   string `gorm:"size:512" json:"description"`
	IsAdmin       bool   `gorm:"default:false" json:"is_admin"`
	IsVerified    bool   `gorm:"default:false" json:"is_verified"`
	Followers     int    `gorm:"default:0" json:"followers"`
	Subscriptions int    `gorm:"default:0" json:"subscriptions"`
	// LegacyComments holds the embedded lightweight comment records written by the
	// old add_comment endpoint, serialized as a JSON array.
	LegacyComments string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Projects       []Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// LegacyComment is a single embedded record inside User.LegacyComments.
type LegacyComment struct {
	RestaurantID uint   `json:"restaurant_id"`
	Text         string `json:"text"`
	AuthorName   string `json:"author_name"`
}

// BeforeCreate assigns a fresh UUID and ensures timestamps are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// EmbeddedComments decodes the legacy comment list. An empty column yields an empty slice.
func (u *User) EmbeddedComments() ([]LegacyComment, error) {
	if u.LegacyComments == "" {
		return []LegacyComment{}, nil
	}
	var out []LegacyComment
	if err := json.Unmarshal([]byte(u.LegacyComments), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendEmbeddedComment appends one record to the legacy comment list.
func (u *User) AppendEmbeddedComment(c LegacyComment) error {
	list, err := u.EmbeddedComments()
	if err != nil {
		return err
	}
	list = append(list, c)
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	u.LegacyComments = string(b)
	return nil
}
