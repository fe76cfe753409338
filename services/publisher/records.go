package publisher

import (
	"context"
	"encoding/json"
	"fmt"
)

// Stream keys of the published record kinds
const (
	KeyCatalog   = "b64_catalog"
	KeySuppliers = "b64_suppliers"
)

// PublishRecords publishes every record as its own JSON message and
// returns how many were published before the first failure.
func PublishRecords[T any](ctx context.Context, pub Publisher, key string, records []T) (int, error) {
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return i, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		if err := pub.Publish(ctx, key, data); err != nil {
			return i, fmt.Errorf("failed to publish record %d: %w", i, err)
		}
	}
	return len(records), nil
}
