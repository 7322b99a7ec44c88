package model

// SearchOptions narrows a query.
type SearchOptions struct {
	Type       DocumentType `json:"type,omitempty"`
	ProjectID  string       `json:"projectId,omitempty"`
	FileType   string       `json:"fileType,omitempty"` // file extension without the dot
	MaxResults int          `json:"maxResults,omitempty"`
}

// Result is one ranked hit. It is built per query and never persisted.
type Result struct {
	DocumentID string       `json:"documentId"`
	Score      float64      `json:"score"` // normalized to [0,1]
	Type       DocumentType `json:"type"`
	Item       Item         `json:"item"`
	Highlights []string     `json:"highlights,omitempty"`
}

// GroupedResults is the seven-bucket shape returned by every search.
type GroupedResults struct {
	Projects []Result `json:"projects"`
	People   []Result `json:"people"`
	Assets   []Result `json:"assets"`
	Files    []Result `json:"files"`
	Folders  []Result `json:"folders"`
	Notes    []Result `json:"notes"`
	All      []Result `json:"all"`

	QueryID        string   `json:"queryId,omitempty"`
	ProcessedQuery string   `json:"processedQuery,omitempty"`
	RemovedWords   []string `json:"removedWords,omitempty"`
	Took           int64    `json:"took"` // milliseconds
}

// EmptyGroupedResults returns a grouped result with every bucket allocated and empty.
func EmptyGroupedResults() *GroupedResults {
	return &GroupedResults{
		Projects: []Result{},
		People:   []Result{},
		Assets:   []Result{},
		Files:    []Result{},
		Folders:  []Result{},
		Notes:    []Result{},
		All:      []Result{},
	}
}

// Clone returns a copy whose bucket slices are independent of g's.
func (g *GroupedResults) Clone() *GroupedResults {
	if g == nil {
		return nil
	}
	out := *g
	out.Projects = append([]Result{}, g.Projects...)
	out.People = append([]Result{}, g.People...)
	out.Assets = append([]Result{}, g.Assets...)
	out.Files = append([]Result{}, g.Files...)
	out.Folders = append([]Result{}, g.Folders...)
	out.Notes = append([]Result{}, g.Notes...)
	out.All = append([]Result{}, g.All...)
	if g.RemovedWords != nil {
		out.RemovedWords = append([]string(nil), g.RemovedWords...)
	}
	return &out
}

// Add appends r to All and to the bucket matching its type.
func (g *GroupedResults) Add(r Result) {
	g.All = append(g.All, r)
	switch r.Type {
	case TypeProject:
		g.Projects = append(g.Projects, r)
	case TypePerson:
		g.People = append(g.People, r)
	case TypeAsset, TypeExternalAsset, TypeAssetGroup:
		g.Assets = append(g.Assets, r)
	case TypeFile:
		g.Files = append(g.Files, r)
	case TypeFolder:
		g.Folders = append(g.Folders, r)
	case TypeNote:
		g.Notes = append(g.Notes, r)
	}
}

// Total returns the number of results across all buckets.
func (g *GroupedResults) Total() int {
	return len(g.All)
}
