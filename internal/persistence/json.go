package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/StatTag/StatWrap-sub000/internal/errors"
	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/model"
)

// AppDirName is the directory created under the user config dir when no data
// dir is configured.
const AppDirName = "StatWrap"

const dataDirPerm = 0o750

var log = logging.ForComponent(logging.CompPersistence)

// ResolveDataDir picks the directory holding the index file: the configured
// dir, else <user config dir>/StatWrap, else the working directory.
func ResolveDataDir(configured string) string {
	if configured != "" {
		return configured
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, AppDirName)
	}
	if wd, err := os.Getwd(); err == nil {
		log.Warn("data_dir_fallback", "dir", wd)
		return wd
	}
	return "."
}

// SaveJSON encodes object as JSON and atomically replaces filePath with it.
// Missing parent directories are created.
func SaveJSON(filePath string, object any) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := json.NewEncoder(tmp).Encode(object); err != nil {
		return fmt.Errorf("failed to json encode to file %s: %w", filePath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to replace file %s: %w", filePath, err)
	}
	committed = true
	return nil
}

// LoadJSON decodes the JSON file at filePath into objectPointer. If the file
// does not exist, it returns os.ErrNotExist.
func LoadJSON(filePath string, objectPointer any) error {
	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, objectPointer); err != nil {
		return fmt.Errorf("failed to json decode from file %s: %w", filePath, err)
	}
	return nil
}

// SaveIndex writes snapshot to filePath, stamping the version and timestamp.
func SaveIndex(filePath string, snapshot *model.IndexSnapshot) error {
	snapshot.Version = model.IndexVersion
	snapshot.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	if snapshot.DocumentStore == nil {
		snapshot.DocumentStore = model.DocumentEntries{}
	}
	if snapshot.IndexedProjects == nil {
		snapshot.IndexedProjects = map[string]model.IndexedProject{}
	}
	if snapshot.PerformanceStats.SearchTimes == nil {
		snapshot.PerformanceStats.SearchTimes = []float64{}
	}
	return SaveJSON(filePath, snapshot)
}

// LoadIndex reads the index file. The returned snapshot is always usable: on
// a missing file, a parse failure or a version mismatch it is the default
// empty snapshot and err says why.
func LoadIndex(filePath string, maxFileSize int64) (*model.IndexSnapshot, error) {
	var snapshot model.IndexSnapshot
	if err := LoadJSON(filePath, &snapshot); err != nil {
		return model.NewIndexSnapshot(maxFileSize), err
	}
	if snapshot.Version != model.IndexVersion {
		return model.NewIndexSnapshot(maxFileSize), apperrors.NewUnsupportedVersionError(snapshot.Version, model.IndexVersion)
	}
	if snapshot.IndexedProjects == nil {
		snapshot.IndexedProjects = map[string]model.IndexedProject{}
	}
	if snapshot.DocumentStore == nil {
		snapshot.DocumentStore = model.DocumentEntries{}
	}
	return &snapshot, nil
}

// ValidateSnapshot checks an imported snapshot: the version must match and
// every entry must carry a document of a known type.
func ValidateSnapshot(snapshot *model.IndexSnapshot) error {
	if snapshot == nil {
		return apperrors.NewValidationError("", "index payload is empty")
	}
	if snapshot.Version != model.IndexVersion {
		return apperrors.NewUnsupportedVersionError(snapshot.Version, model.IndexVersion)
	}
	if snapshot.DocumentStore == nil {
		return apperrors.NewValidationError("documentStore", "is required")
	}
	for i, entry := range snapshot.DocumentStore {
		if entry.ID == "" {
			return apperrors.NewValidationError("documentStore", fmt.Sprintf("entry %d has an empty id", i))
		}
		if entry.Document == nil {
			return apperrors.NewValidationError("documentStore", fmt.Sprintf("entry %q has no document", entry.ID))
		}
		if !entry.Document.Type.Valid() {
			return apperrors.NewValidationError("documentStore", fmt.Sprintf("entry %q has unknown type %q", entry.ID, entry.Document.Type))
		}
	}
	return nil
}

// DeleteFile removes filePath. A missing file counts as success.
func DeleteFile(filePath string) error {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// FileInfo reports whether filePath exists and its size.
func FileInfo(filePath string) model.IndexFileInfo {
	info := model.IndexFileInfo{Path: filePath}
	if st, err := os.Stat(filePath); err == nil {
		info.Exists = true
		info.Size = st.Size()
	}
	return info
}
