package model

import "time"

// Shop is a merchant a card belongs to. Verified shops are platform-curated
// and immutable through the user-facing API; user-submitted shops start
// unverified and stay editable by the owning card holder.
type Shop struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:30;not null;index"`
	Logo      string    `json:"logo,omitempty" gorm:"size:255"`
	Color     string    `json:"color,omitempty" gorm:"size:7"`
	Verified  bool      `json:"verified" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Groups []Group `json:"groups" gorm:"many2many:shop_groups"`
}
