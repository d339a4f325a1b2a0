package common

import (
	"context"
	"time"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyPrincipalID    ContextKey = "principal_id"
	ContextKeyEmailConfirmed ContextKey = "email_confirmed"
	ContextKeyRole           ContextKey = "role"
	ContextKeyClientID       ContextKey = "client_id"
	ContextKeyRequestID      ContextKey = "request_id"
	ContextKeyStartTime      ContextKey = "start_time"
)

// WithPrincipalID adds the authenticated principal id to context
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipalID, principalID)
}

// GetPrincipalID extracts the authenticated principal id from context
func GetPrincipalID(ctx context.Context) (string, bool) {
	principalID, ok := ctx.Value(ContextKeyPrincipalID).(string)
	return principalID, ok
}

// WithEmailConfirmed records whether the identity provider confirmed the email
func WithEmailConfirmed(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, ContextKeyEmailConfirmed, confirmed)
}

// GetEmailConfirmed extracts the email confirmation flag from context
func GetEmailConfirmed(ctx context.Context) bool {
	confirmed, ok := ctx.Value(ContextKeyEmailConfirmed).(bool)
	return ok && confirmed
}

// WithRole adds the principal's marketplace role to context
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// GetRole extracts the principal's marketplace role from context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ContextKeyRole).(string)
	return role, ok
}

// WithClientID adds the anonymous client id to context. The client id names
// the browser installation, not the principal; draft references are keyed by it.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ContextKeyClientID, clientID)
}

// GetClientID extracts the anonymous client id from context
func GetClientID(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(ContextKeyClientID).(string)
	return clientID, ok
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// WithStartTime adds start time to context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetStartTime extracts start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time)
	return startTime, ok
}

// GetElapsedTime calculates elapsed time from start time in context
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := GetStartTime(ctx); ok {
		return time.Since(startTime)
	}
	return 0
}

// EnrichContext adds common request metadata to context
func EnrichContext(ctx context.Context, principalID, requestID string) context.Context {
	ctx = WithPrincipalID(ctx, principalID)
	ctx = WithRequestID(ctx, requestID)
	ctx = WithStartTime(ctx, time.Now())
	return ctx
}
