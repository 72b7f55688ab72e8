package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs instead of failing the
// request on cache errors.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys and logs instead of failing the request.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSession drops a cached account lookup after role or credential
// changes so the next request re-reads the database.
func InvalidateSession(ctx context.Context, cm *CacheManager, username string) {
	SafeDelete(ctx, cm.Session, username)
}

// InvalidateCalendar drops all cached calendar listings after a mutation.
func InvalidateCalendar(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Calendar, "*")
}

// InvalidateOptions drops cached lesson plan options after a plan changes.
func InvalidateOptions(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Options, "*")
}
