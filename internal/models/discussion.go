package models

import (
	"time"

	"gorm.io/datatypes"
)

// DeletedMessagePlaceholder is what clients render for soft-deleted messages.
// The original content is retained on the row for moderation history.
const DeletedMessagePlaceholder = "[message deleted]"

type DiscussionMessage struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	EventID  uint   `json:"event_id" gorm:"not null;index"`
	AuthorID string `json:"author_id" gorm:"not null;size:255;index"`

	Content string `json:"-" gorm:"type:text;not null"`

	// Single parent pointer; the thread tree is rebuilt server-side with an
	// adjacency map (see services.BuildThreadTree).
	ParentMessageID *uint `json:"parent_message_id" gorm:"index"`

	IsPinned       bool `json:"is_pinned" gorm:"not null;default:false"`
	IsAnnouncement bool `json:"is_announcement" gorm:"not null;default:false"`
	IsDeleted      bool `json:"is_deleted" gorm:"not null;default:false"`

	// map of reaction label -> []string of reacting user ids.
	Reactions datatypes.JSON `json:"reactions" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Event  Event `json:"-" gorm:"foreignKey:EventID"`
	Author User  `json:"author" gorm:"foreignKey:AuthorID"`

	// Computed fields (not stored)
	DisplayContent string               `json:"content" gorm:"-"`
	Replies        []*DiscussionMessage `json:"replies,omitempty" gorm:"-"`
}

func (DiscussionMessage) TableName() string {
	return "discussion_messages"
}

// Render fills DisplayContent: the placeholder for deleted messages, the
// stored content otherwise.
func (m *DiscussionMessage) Render() {
	if m.IsDeleted {
		m.DisplayContent = DeletedMessagePlaceholder
		return
	}
	m.DisplayContent = m.Content
}
