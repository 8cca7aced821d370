package models

import "time"

type Award struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoryID  uint      `gorm:"not null;index:idx_award_category_order,priority:1" json:"category_id"`
	Year        int       `gorm:"not null" json:"year"`
	Month       int       `gorm:"not null" json:"month"`
	Title       *string   `gorm:"size:300" json:"title"`
	Name        string    `gorm:"size:300;not null" json:"name"`
	EngName     string    `gorm:"size:300" json:"eng_name"`
	Source      string    `gorm:"size:300" json:"source"`
	Description *string   `gorm:"type:text" json:"description"`
	MediaPath   *string   `gorm:"size:500" json:"media_path"`
	Order       int       `gorm:"column:sort_order;not null;default:0;index:idx_award_category_order,priority:2" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

func (Award) TableName() string {
	return "awards"
}

// DateKey encodes the award date as year*100+month. Only ordered correctly
// for months in 1..12.
func (a Award) DateKey() int {
	return a.Year*100 + a.Month
}
