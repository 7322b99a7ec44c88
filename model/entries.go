package model

import (
	"encoding/json"
	"fmt"
)

// DocumentEntries serializes as an array of [id, document] pairs.
type DocumentEntries []DocumentEntry

// MarshalJSON implements json.Marshaler.
func (e DocumentEntries) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(e))
	for _, entry := range e {
		pairs = append(pairs, [2]any{entry.ID, entry.Document})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *DocumentEntries) UnmarshalJSON(data []byte) error {
	var pairs [][]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	out := make(DocumentEntries, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return fmt.Errorf("document entry %d: expected [id, document] pair, got %d elements", i, len(pair))
		}
		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return fmt.Errorf("document entry %d: id: %w", i, err)
		}
		doc := &Document{}
		if err := json.Unmarshal(pair[1], doc); err != nil {
			return fmt.Errorf("document entry %d: %w", i, err)
		}
		out = append(out, DocumentEntry{ID: id, Document: doc})
	}
	*e = out
	return nil
}
