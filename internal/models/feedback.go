package models

import "time"

type Feedback struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	EventID       uint   `json:"event_id" gorm:"not null;uniqueIndex:idx_feedback_event_participant"`
	ParticipantID string `json:"participant_id" gorm:"not null;size:255;uniqueIndex:idx_feedback_event_participant"`

	Rating  int     `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" gorm:"type:text" validate:"omitempty,max=2000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Event       Event `json:"event" gorm:"foreignKey:EventID"`
	Participant User  `json:"-" gorm:"foreignKey:ParticipantID"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
