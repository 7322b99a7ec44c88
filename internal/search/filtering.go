package search

import (
	"github.com/StatTag/StatWrap-sub000/index"
	"github.com/StatTag/StatWrap-sub000/internal/tagging"
	"github.com/StatTag/StatWrap-sub000/model"
)

// docMatchesOptions applies the post-hoc filters of a search: document type,
// owning project and file extension. Empty options match everything.
func docMatchesOptions(doc model.Document, opts model.SearchOptions) bool {
	if opts.Type != "" && doc.Type != opts.Type {
		return false
	}
	if opts.ProjectID != "" && doc.ProjectID != opts.ProjectID {
		return false
	}
	if opts.FileType != "" {
		if doc.Type != model.TypeFile {
			return false
		}
		if tagging.NormalizeExtension(doc.Item.Extension) != tagging.NormalizeExtension(opts.FileType) {
			return false
		}
	}
	return true
}

// targetIndex picks the index a search runs against: the type's dedicated
// sub-index when it has one, else the composite main index.
func targetIndex(opts model.SearchOptions) string {
	if opts.FileType != "" && opts.Type == "" {
		return index.Files
	}
	if opts.Type == "" || !opts.Type.Valid() {
		return index.Main
	}
	return index.IndexForType(opts.Type)
}
