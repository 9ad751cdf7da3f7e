package model

import "time"

// UserCard links one user to one card and carries all per-user card state:
// ownership, favourite flag, usage counter and sharing provenance. The
// (user_id, card_id) pair is unique; concurrent duplicate inserts fail on the
// index and are surfaced as conflicts.
type UserCard struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	UserID       uint      `json:"-" gorm:"not null;uniqueIndex:uniq_user_card"`
	CardID       uint      `json:"-" gorm:"not null;uniqueIndex:uniq_user_card"`
	Owner        bool      `json:"owner" gorm:"default:false"`
	Favourite    bool      `json:"favourite" gorm:"default:false"`
	UsageCounter uint      `json:"usage_counter" gorm:"default:0"`
	SharedByID   *uint     `json:"shared_by,omitempty"`
	PubDate      time.Time `json:"pub_date" gorm:"autoCreateTime"`

	// Relations
	User     User  `json:"-" gorm:"foreignKey:UserID"`
	Card     Card  `json:"card" gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	SharedBy *User `json:"-" gorm:"foreignKey:SharedByID"`
}
