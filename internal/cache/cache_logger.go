package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates a cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateEventCache invalidates all caches keyed by one event
func InvalidateEventCache(ctx context.Context, cm *CacheManager, eventID uint, organizerID string) {
	SafeDelete(ctx, cm.Event,
		fmt.Sprintf("id:%d", eventID),
		fmt.Sprintf("details:%d", eventID))

	SafeInvalidatePattern(ctx, cm.Event, fmt.Sprintf("organizer:%s:*", organizerID))
	SafeInvalidatePattern(ctx, cm.Event, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("event:%d:*", eventID))
	SafeInvalidatePattern(ctx, cm.Trending, "*")
}

// InvalidateRegistrationCache invalidates a participant's registration caches
func InvalidateRegistrationCache(ctx context.Context, cm *CacheManager, eventID uint, participantID string) {
	SafeInvalidatePattern(ctx, cm.Registration, fmt.Sprintf("participant:%s:*", participantID))
	SafeInvalidatePattern(ctx, cm.Registration, fmt.Sprintf("event:%d:*", eventID))
	SafeInvalidatePattern(ctx, cm.Fast, fmt.Sprintf("event:%d:*", eventID))
}
