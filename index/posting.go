package index

// PostingEntry records that a document contains a term in one field.
type PostingEntry struct {
	DocID     string // Document id as stored in the document store
	FieldName string // "title", "tags" or "content"
	Score     float64
	Positions []int // token offsets within the field
}

// PostingList holds every PostingEntry for one term.
type PostingList []PostingEntry

// without returns the list minus the entries belonging to docID.
func (pl PostingList) without(docID string) PostingList {
	out := pl[:0]
	for _, entry := range pl {
		if entry.DocID != docID {
			out = append(out, entry)
		}
	}
	return out
}

// docFrequency counts distinct documents in the list.
func (pl PostingList) docFrequency() int {
	seen := make(map[string]struct{}, len(pl))
	for _, entry := range pl {
		seen[entry.DocID] = struct{}{}
	}
	return len(seen)
}
