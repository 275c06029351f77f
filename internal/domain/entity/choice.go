package entity

import "time"

// Choice is one selectable answer option of a question.
type Choice struct {
	ID         string    `gorm:"primaryKey;size:50" json:"id"`
	QuestionID string    `gorm:"size:20;not null;index" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the GORM table name.
func (Choice) TableName() string {
	return "choices"
}
