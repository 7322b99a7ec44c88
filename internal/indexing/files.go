package indexing

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/charmap"

	"github.com/StatTag/StatWrap-sub000/internal/tagging"
	"github.com/StatTag/StatWrap-sub000/model"
)

// WalkStats summarizes a project directory walk.
type WalkStats struct {
	Folders        int
	Files          int
	ContentIndexed int
	Skipped        int // unreadable files and directories
}

// walkProjectFiles emits folder and file documents for every non-skipped
// entry below root. Unreadable entries are logged and skipped. The walk
// pauses every YieldEvery files and stops early only when ctx is done.
func (s *Service) walkProjectFiles(ctx context.Context, p model.Project) ([]model.Document, WalkStats, error) {
	var stats WalkStats

	root := p.Path
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		log.Warn("project_path_missing", "project_id", p.ID, "path", root, "error", errString(err))
		return nil, stats, nil
	}

	skip := make(map[string]struct{}, len(s.settings.Index.SkipDirectories))
	for _, dir := range s.settings.Index.SkipDirectories {
		skip[dir] = struct{}{}
	}

	var docs []model.Document
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			stats.Skipped++
			log.Warn("walk_entry_unreadable", "project_id", p.ID, "path", path, "error", err.Error())
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skip[d.Name()]; ok {
				return fs.SkipDir
			}
			rel := relativePath(root, path)
			docs = append(docs, folderDocument(p, path, rel, d.Name()))
			stats.Folders++
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		stats.Files++
		if stats.Files%s.yieldEvery() == 0 {
			if err := s.yield(ctx); err != nil {
				return err
			}
		}

		doc, ok := s.fileDocument(p, path, relativePath(root, path), d)
		if !ok {
			stats.Skipped++
			return nil
		}
		if doc.Item.ContentIndexed {
			stats.ContentIndexed++
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return docs, stats, walkErr
	}
	return docs, stats, nil
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func folderDocument(p model.Project, absPath, rel, name string) model.Document {
	content := joinNonEmpty(name, rel)
	return model.Document{
		ID:        model.NewDocumentID(model.TypeFolder, p.ID, rel),
		Type:      model.TypeFolder,
		Title:     name,
		Content:   content,
		Tags:      []string{string(model.TypeFolder)},
		ProjectID: p.ID,
		Item: model.Item{
			ID:           rel,
			Name:         name,
			Type:         string(model.TypeFolder),
			Path:         absPath,
			RelativePath: rel,
			ProjectID:    p.ID,
			ProjectName:  p.Name,
		},
	}
}

// fileDocument builds the document for one file: a lightweight record
// (name and relative path) upgraded with the body text when the file is
// eligible, small enough, readable and not binary.
func (s *Service) fileDocument(p model.Project, absPath, rel string, d fs.DirEntry) (model.Document, bool) {
	info, err := d.Info()
	if err != nil {
		log.Warn("file_stat_failed", "project_id", p.ID, "path", absPath, "error", err.Error())
		return model.Document{}, false
	}
	return s.buildFileDocument(p, absPath, rel, info), true
}

func (s *Service) buildFileDocument(p model.Project, absPath, rel string, info fs.FileInfo) model.Document {
	name := info.Name()
	ext := tagging.NormalizeExtension(filepath.Ext(name))

	doc := model.Document{
		ID:        model.NewDocumentID(model.TypeFile, p.ID, rel),
		Type:      model.TypeFile,
		Title:     name,
		Content:   joinNonEmpty(name, rel),
		Tags:      tagging.GenerateTags("", model.TypeFile, ext),
		ProjectID: p.ID,
		Item: model.Item{
			ID:           rel,
			Name:         name,
			Type:         string(model.TypeFile),
			Path:         absPath,
			RelativePath: rel,
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			Extension:    ext,
			Size:         info.Size(),
			LastModified: info.ModTime().UnixMilli(),
		},
	}

	eligible := tagging.ClassifyFile(name, ext) && info.Size() <= s.settings.Search.MaxIndexableFileSize
	if eligible {
		body, mimeType, ok := readTextFile(absPath)
		doc.Item.MimeType = mimeType
		if ok {
			doc.Content = name + "\n" + body
			doc.Tags = tagging.GenerateTags(body, model.TypeFile, ext)
			doc.Item.ContentIndexed = true
			doc.Item.Preview = truncate(body, PreviewLength)
		}
	} else if info.Size() > 0 {
		if mt, err := mimetype.DetectFile(absPath); err == nil {
			doc.Item.MimeType = mt.String()
		}
	}

	doc.Metadata = metadataJSON(map[string]any{
		"size":           doc.Item.Size,
		"lastModified":   doc.Item.LastModified,
		"contentIndexed": doc.Item.ContentIndexed,
		"mimeType":       doc.Item.MimeType,
		"extension":      ext,
	})
	return doc
}

// readTextFile returns the decoded body of a text file. Files containing a NUL
// byte are treated as binary. Invalid UTF-8 is decoded as Latin-1.
func readTextFile(path string) (string, string, bool) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from walking a project directory
	if err != nil {
		log.Warn("file_read_failed", "path", path, "error", err.Error())
		return "", "", false
	}
	mimeType := mimetype.Detect(data).String()

	if bytes.IndexByte(data, 0) >= 0 {
		log.Debug("file_binary_skipped", "path", path)
		return "", mimeType, false
	}

	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\uFEFF"), mimeType, true
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		log.Warn("file_decode_failed", "path", path, "error", err.Error())
		return "", mimeType, false
	}
	return string(decoded), mimeType, true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
