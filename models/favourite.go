package models

import "time"

// Favourite marks a restaurant as favourited by a user. Presence of the row is the signal.
type Favourite struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index:idx_fav_user_restaurant,unique;not null" json:"user_id"`
	RestaurantID uint      `gorm:"index:idx_fav_user_restaurant,unique;not null" json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
}
