package clients

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// UserIDKey is the context key for the calling user's scope
const UserIDKey contextKey = "user-id"

// WithUserID pins a user scope on the context
// Client calls with an empty user_id argument fall back to this value, and
// outgoing requests carry it as the X-User-ID header
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID retrieves the user scope from context
// Returns the user ID and true if found, empty string and false otherwise
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
