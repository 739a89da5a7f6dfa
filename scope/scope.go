// Package scope carries the owning principal's identity on the context
// so processors and item stores can authorize without extra parameters.
package scope

import "context"

type ownerKey struct{}

// WithOwner attaches the owner identifier to the context.
// If ownerID is empty, the context is returned unchanged.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	if ownerID == "" {
		return ctx
	}
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// Owner extracts the owner identifier from the context.
// Returns false if no owner is present.
func Owner(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ownerKey{}).(string)
	return s, ok
}
