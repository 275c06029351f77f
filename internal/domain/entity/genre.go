package entity

import "time"

// Genre is a topical category grouping questions.
type Genre struct {
	ID          string    `gorm:"primaryKey;size:10" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// QuestionCount is filled by list queries only.
	QuestionCount int64 `gorm:"->;-:migration" json:"question_count"`
}

// TableName returns the GORM table name.
func (Genre) TableName() string {
	return "genres"
}
