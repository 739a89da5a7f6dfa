package processor

import (
	"context"
	"encoding/base64"
)

// ExportedItem is the per-item value produced by the export operation:
// the item's content encoded for transfer, plus its original size.
type ExportedItem struct {
	ItemID   string `json:"item_id"`
	Encoding string `json:"encoding"`
	Data     string `json:"data"`
	Size     int    `json:"size"`
}

// Export encodes each item's content as base64 for hand-off to a
// presentation or download layer.
type Export struct {
	store ItemStore
}

// NewExport creates an export processor backed by the given store.
func NewExport(store ItemStore) *Export {
	return &Export{store: store}
}

// Name returns "export".
func (e *Export) Name() string { return "export" }

// Process resolves the item's content and returns an ExportedItem.
func (e *Export) Process(ctx context.Context, ownerID, itemID string) (any, error) {
	content, err := e.store.Content(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	return Result{Success: true, Value: ExportedItem{
		ItemID:   itemID,
		Encoding: "base64",
		Data:     base64.StdEncoding.EncodeToString(content),
		Size:     len(content),
	}}, nil
}
