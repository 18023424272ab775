package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/pkg/models"
)

// MergeInto consumes the slot payload and merges the decoded entries into
// store. An empty slot is not an error. A malformed payload is reported and
// stays consumed.
func MergeInto(store *logstore.Store, slot *Slot) (int, error) {
	data, ok := slot.Take()
	if !ok {
		return 0, nil
	}
	var entries []models.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("decode server logs: %w", err)
	}
	for i := range entries {
		if entries[i].Source == models.SourceNone {
			entries[i].Source = models.SourceServer
		}
	}
	return len(store.Merge(entries)), nil
}

// LoadServerLogs fetches url, fills slot with the embedded payload if there is
// one, and merges it into store.
func LoadServerLogs(ctx context.Context, f *Fetcher, url, varName string, slot *Slot, store *logstore.Store) (int, error) {
	page, err := f.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	if payload, ok := ExtractPayload(page, varName); ok {
		slot.Fill(payload)
	}
	return MergeInto(store, slot)
}
