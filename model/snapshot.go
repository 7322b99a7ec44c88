package model

// IndexVersion is the only persisted/imported index format accepted.
const IndexVersion = "1.0"

// IndexedProject is a registry entry used during reconciliation.
type IndexedProject struct {
	LastIndexed int64  `json:"lastIndexed"` // unix milliseconds
	Path        string `json:"path"`
	Name        string `json:"name"`
}

// DocumentEntry is one [id, document] pair of the serialized store.
type DocumentEntry struct {
	ID       string
	Document *Document
}

// IndexSnapshot is the on-disk shape of the index file.
type IndexSnapshot struct {
	Version             string                    `json:"version"`
	Timestamp           string                    `json:"timestamp"`
	DocumentStore       DocumentEntries           `json:"documentStore"`
	IndexedProjects     map[string]IndexedProject `json:"indexedProjects"`
	PerformanceStats    PerformanceStats          `json:"performanceStats"`
	MaxIndexingFileSize int64                     `json:"maxIndexingFileSize"`
}

// ProjectSummary is the id/name/path triple carried by exports.
type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ExportPayload is an IndexSnapshot plus project summaries.
type ExportPayload struct {
	IndexSnapshot
	ProjectsData []ProjectSummary `json:"projectsData"`
}

// NewIndexSnapshot returns the default, empty snapshot.
func NewIndexSnapshot(maxFileSize int64) *IndexSnapshot {
	return &IndexSnapshot{
		Version:             IndexVersion,
		DocumentStore:       DocumentEntries{},
		IndexedProjects:     map[string]IndexedProject{},
		PerformanceStats:    PerformanceStats{SearchTimes: []float64{}},
		MaxIndexingFileSize: maxFileSize,
	}
}

// IsEmpty reports whether the snapshot holds no documents.
func (s *IndexSnapshot) IsEmpty() bool {
	return s == nil || len(s.DocumentStore) == 0
}
