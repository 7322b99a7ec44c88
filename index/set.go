package index

import (
	"errors"
	"fmt"

	"github.com/StatTag/StatWrap-sub000/model"
)

// Named indices.
const (
	Main     = "main"
	Projects = "projects"
	Files    = "files"
	People   = "people"
	Notes    = "notes"
)

// Names lists every named index in a stable order.
var Names = []string{Main, Projects, Files, People, Notes}

// IndicesFor returns the indices a document of the given type belongs to.
// Every type goes to main; some types also get a dedicated sub-index.
func IndicesFor(docType model.DocumentType) []string {
	switch docType {
	case model.TypeProject:
		return []string{Main, Projects}
	case model.TypeFile, model.TypeFolder:
		return []string{Main, Files}
	case model.TypePerson:
		return []string{Main, People}
	case model.TypeNote:
		return []string{Main, Notes}
	default:
		return []string{Main}
	}
}

// IndexForType returns the dedicated sub-index that fully covers docType,
// or Main when there is none.
func IndexForType(docType model.DocumentType) string {
	names := IndicesFor(docType)
	return names[len(names)-1]
}

// Set holds the composite main index and the type-specific sub-indices.
type Set struct {
	kind    string
	indices map[string]Backend
}

// NewSet creates one backend of the given kind per named index.
func NewSet(kind string) (*Set, error) {
	s := &Set{kind: kind, indices: make(map[string]Backend, len(Names))}
	for _, name := range Names {
		b, err := NewBackend(kind)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.indices[name] = b
	}
	return s, nil
}

// BackendName reports the backend implementation in use.
func (s *Set) BackendName() string {
	return s.indices[Main].Name()
}

// Get returns the named index.
func (s *Set) Get(name string) (Backend, bool) {
	b, ok := s.indices[name]
	return b, ok
}

// Add registers doc with every index its type maps to.
func (s *Set) Add(doc model.Document) error {
	var errs []error
	for _, name := range IndicesFor(doc.Type) {
		if err := s.indices[name].AddDocument(doc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Remove drops doc from every index its type maps to.
func (s *Set) Remove(doc model.Document) error {
	var errs []error
	for _, name := range IndicesFor(doc.Type) {
		if err := s.indices[name].RemoveDocument(doc.ID); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear empties every index.
func (s *Set) Clear() error {
	var errs []error
	for _, name := range Names {
		if err := s.indices[name].Clear(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Sizes returns the document count of every index.
func (s *Set) Sizes() map[string]int {
	sizes := make(map[string]int, len(s.indices))
	for name, b := range s.indices {
		sizes[name] = b.Len()
	}
	return sizes
}

// Close releases every index.
func (s *Set) Close() error {
	var errs []error
	for name, b := range s.indices {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
