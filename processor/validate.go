package processor

import (
	"context"
	"unicode/utf8"
)

// Validate checks that an item's content is present, non-empty, and
// valid UTF-8. A validation miss is reported through the Result success
// flag, not an error: the item was attempted and concluded normally,
// it just failed its check.
type Validate struct {
	store ItemStore
}

// NewValidate creates a validate processor backed by the given store.
func NewValidate(store ItemStore) *Validate {
	return &Validate{store: store}
}

// Name returns "validate".
func (v *Validate) Name() string { return "validate" }

// Process resolves the item's content and returns a flagged Result.
func (v *Validate) Process(ctx context.Context, ownerID, itemID string) (any, error) {
	content, err := v.store.Content(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	switch {
	case len(content) == 0:
		return Result{Success: false, Error: "empty content"}, nil
	case !utf8.Valid(content):
		return Result{Success: false, Error: "content is not valid UTF-8"}, nil
	default:
		return Result{Success: true, Value: "ok"}, nil
	}
}
