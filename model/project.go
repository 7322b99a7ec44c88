package model

import "strings"

// Project is the read-only project descriptor handed to the search service by
// its host. The service never mutates it.
type Project struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Path           string       `json:"path"`
	Description    string       `json:"description,omitempty"`
	Categories     []string     `json:"categories,omitempty"`
	People         []Person     `json:"people,omitempty"`
	Notes          []Note       `json:"notes,omitempty"`
	Assets         *Asset       `json:"assets,omitempty"`
	ExternalAssets *Asset       `json:"externalAssets,omitempty"`
	AssetGroups    []AssetGroup `json:"assetGroups,omitempty"`
}

// PersonName holds the structured parts of a person's name.
type PersonName struct {
	Prefix string `json:"prefix,omitempty"`
	First  string `json:"first,omitempty"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Display formats the name as "Prefix First Middle Last Suffix", skipping blanks.
func (n PersonName) Display() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{n.Prefix, n.First, n.Middle, n.Last, n.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Person is a project member.
type Person struct {
	ID          string     `json:"id"`
	Name        PersonName `json:"name"`
	Affiliation string     `json:"affiliation,omitempty"`
	Roles       []string   `json:"roles,omitempty"`
	Notes       []Note     `json:"notes,omitempty"`
}

// Note is a free-text note attached to a project, person or asset.
type Note struct {
	ID      string `json:"id"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// Asset is one node of a project's asset tree.
type Asset struct {
	URI        string            `json:"uri"`
	Name       string            `json:"name,omitempty"`
	Type       string            `json:"type,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Notes      []Note            `json:"notes,omitempty"`
	Children   []*Asset          `json:"children,omitempty"`
}

// AssetGroup is a named selection of assets.
type AssetGroup struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Details string           `json:"details,omitempty"`
	Assets  []AssetReference `json:"assets,omitempty"`
}

// AssetReference points at an asset by URI.
type AssetReference struct {
	URI string `json:"uri"`
}
