package services

import (
	"testing"
	"time"

	"github.com/UniFest-2025/event-service/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func TestBuildThreadTree(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	msg := func(id uint, parent *uint, offset time.Duration) *models.DiscussionMessage {
		return &models.DiscussionMessage{
			ID:              id,
			EventID:         1,
			Content:         "message",
			ParentMessageID: parent,
			CreatedAt:       base.Add(offset),
		}
	}

	t.Run("flat messages stay roots in order", func(t *testing.T) {
		roots := BuildThreadTree([]*models.DiscussionMessage{
			msg(2, nil, time.Minute),
			msg(1, nil, 0),
			msg(3, nil, 2*time.Minute),
		})

		if len(roots) != 3 {
			t.Fatalf("expected 3 roots, got %d", len(roots))
		}
		for i, wantID := range []uint{1, 2, 3} {
			if roots[i].ID != wantID {
				t.Errorf("root %d: expected id %d, got %d", i, wantID, roots[i].ID)
			}
		}
	})

	t.Run("replies nest under parents", func(t *testing.T) {
		roots := BuildThreadTree([]*models.DiscussionMessage{
			msg(1, nil, 0),
			msg(2, uintPtr(1), time.Minute),
			msg(3, uintPtr(1), 2*time.Minute),
			msg(4, uintPtr(2), 3*time.Minute),
		})

		if len(roots) != 1 {
			t.Fatalf("expected 1 root, got %d", len(roots))
		}
		root := roots[0]
		if len(root.Replies) != 2 {
			t.Fatalf("expected 2 replies on root, got %d", len(root.Replies))
		}
		if root.Replies[0].ID != 2 || root.Replies[1].ID != 3 {
			t.Errorf("unexpected reply order: %d, %d", root.Replies[0].ID, root.Replies[1].ID)
		}
		if len(root.Replies[0].Replies) != 1 || root.Replies[0].Replies[0].ID != 4 {
			t.Error("expected message 4 nested under message 2")
		}
	})

	t.Run("orphan replies become roots", func(t *testing.T) {
		roots := BuildThreadTree([]*models.DiscussionMessage{
			msg(1, nil, 0),
			msg(5, uintPtr(99), time.Minute),
		})

		if len(roots) != 2 {
			t.Fatalf("expected orphan promoted to root, got %d roots", len(roots))
		}
	})

	t.Run("deleted messages render placeholder but keep replies", func(t *testing.T) {
		parent := msg(1, nil, 0)
		parent.IsDeleted = true
		roots := BuildThreadTree([]*models.DiscussionMessage{
			parent,
			msg(2, uintPtr(1), time.Minute),
		})

		if len(roots) != 1 {
			t.Fatalf("expected 1 root, got %d", len(roots))
		}
		if roots[0].DisplayContent != models.DeletedMessagePlaceholder {
			t.Errorf("expected placeholder content, got %q", roots[0].DisplayContent)
		}
		if len(roots[0].Replies) != 1 {
			t.Error("expected reply preserved under deleted parent")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if roots := BuildThreadTree(nil); len(roots) != 0 {
			t.Errorf("expected no roots, got %d", len(roots))
		}
	})
}
