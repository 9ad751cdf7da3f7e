package model

// Group is a shop category. Groups are seeded once and have no owner.
type Group struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:20;not null"`
}
