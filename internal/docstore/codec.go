package docstore

import (
	"encoding/json"
	"fmt"
)

func encodeDocument(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// mergeDocuments returns current overlaid with patch. Empty patch values are skipped.
func mergeDocuments(current, patch Document) Document {
	merged := make(Document, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}

// claimChange describes a unique value that moves from oldValue to newValue.
type claimChange struct {
	field    string
	oldValue string
	newValue string
}

// uniqueChanges lists the unique fields whose value is changed by patch.
func uniqueChanges(fields []string, current, patch Document) []claimChange {
	var changes []claimChange
	for _, field := range fields {
		newValue, ok := patch[field]
		if !ok || newValue == "" || newValue == current[field] {
			continue
		}
		changes = append(changes, claimChange{
			field:    field,
			oldValue: current[field],
			newValue: newValue,
		})
	}
	return changes
}

func limitOrAll(snapshots []Snapshot, limit int) []Snapshot {
	if limit > 0 && len(snapshots) > limit {
		return snapshots[:limit]
	}
	return snapshots
}
