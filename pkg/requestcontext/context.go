// Package requestcontext carries request-scoped values between middleware and
// services without either side importing the other. Services read the caller,
// request id and request time from here; tests set them directly.
package requestcontext

import (
	"context"
	"time"

	id "authgate/pkg/domain"
)

type key int

const (
	userIDKey key = iota
	userEmailKey
	clientIPKey
	userAgentKey
	deviceKey
	requestIDKey
	requestTimeKey
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// UserID returns the authenticated subject, or the nil id for anonymous
// requests.
func UserID(ctx context.Context) id.UserID {
	return value[id.UserID](ctx, userIDKey)
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserEmail returns the email claim of the access token.
func UserEmail(ctx context.Context) string {
	return value[string](ctx, userEmailKey)
}

func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

func ClientIP(ctx context.Context) string {
	return value[string](ctx, clientIPKey)
}

func UserAgent(ctx context.Context) string {
	return value[string](ctx, userAgentKey)
}

// WithClientMetadata records where the request came from. Security events
// copy both values.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

// Device returns the display label derived from the user agent.
func Device(ctx context.Context) string {
	return value[string](ctx, deviceKey)
}

func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey, device)
}

func RequestID(ctx context.Context) string {
	return value[string](ctx, requestIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the time captured when the request started, or the wall clock
// outside a request (workers, tests without middleware).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
