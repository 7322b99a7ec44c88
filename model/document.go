package model

import (
	"strings"

	"github.com/google/uuid"
)

// DocumentType identifies which kind of entity a Document was derived from.
type DocumentType string

const (
	TypeProject       DocumentType = "project"
	TypeFile          DocumentType = "file"
	TypeFolder        DocumentType = "folder"
	TypePerson        DocumentType = "person"
	TypeNote          DocumentType = "note"
	TypeAsset         DocumentType = "asset"
	TypeExternalAsset DocumentType = "external-asset"
	TypeAssetGroup    DocumentType = "asset-group"
)

// AllDocumentTypes lists every valid DocumentType.
var AllDocumentTypes = []DocumentType{
	TypeProject, TypeFile, TypeFolder, TypePerson, TypeNote, TypeAsset, TypeExternalAsset, TypeAssetGroup,
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	for _, known := range AllDocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Document is the unit of indexing. It is a denormalized record holding both the
// searchable text and everything needed to render a result without going back
// to the project descriptor.
type Document struct {
	ID        string       `json:"id"`
	Type      DocumentType `json:"type"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Tags      []string     `json:"tags"`
	Metadata  string       `json:"metadata,omitempty"` // JSON text; returned to callers, never ranked
	ProjectID string       `json:"projectId,omitempty"`
	Item      Item         `json:"item"`
}

// HasTag reports whether the document carries the given tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Item is the enriched original entity attached to a Document. Slices are nil
// when empty so that a JSON round trip reproduces the value exactly.
type Item struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name,omitempty"`
	Type           string   `json:"type,omitempty"`
	Path           string   `json:"path,omitempty"`
	RelativePath   string   `json:"relativePath,omitempty"`
	ProjectID      string   `json:"projectId,omitempty"`
	ProjectName    string   `json:"projectName,omitempty"`
	Description    string   `json:"description,omitempty"`
	Preview        string   `json:"preview,omitempty"`
	Extension      string   `json:"extension,omitempty"`
	MimeType       string   `json:"mimeType,omitempty"`
	Size           int64    `json:"size,omitempty"`
	LastModified   int64    `json:"lastModified,omitempty"` // unix milliseconds
	ContentIndexed bool     `json:"contentIndexed,omitempty"`
	Affiliation    string   `json:"affiliation,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	EntityType     string   `json:"entityType,omitempty"`
	EntityName     string   `json:"entityName,omitempty"`
	Author         string   `json:"author,omitempty"`
	NoteContent    string   `json:"noteContent,omitempty"`
	URI            string   `json:"uri,omitempty"`
	Members        []string `json:"members,omitempty"`
	Categories     []string `json:"categories,omitempty"`
}

// documentIDNamespace seeds the name-based UUIDs used for document ids.
var documentIDNamespace = uuid.MustParse("3f0c8a52-52d4-4d8e-9c43-5a1f5e0b6d21")

// NewDocumentID derives the deterministic id for (type, identifier, subIdentifier).
// The result only contains [a-z0-9_-].
func NewDocumentID(docType DocumentType, identifier, subIdentifier string) string {
	key := strings.Join([]string{string(docType), identifier, subIdentifier}, "\x00")
	return sanitizeIDPart(string(docType)) + "_" + uuid.NewSHA1(documentIDNamespace, []byte(key)).String()
}

func sanitizeIDPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// NonEmpty returns nil for an empty slice and the slice otherwise.
func NonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
