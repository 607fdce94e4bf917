package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "tradepulse/internal/errors"
)

// ReportFile describes one generated CSV report on disk.
type ReportFile struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Catalog lists and opens the CSV reports the pipeline writes to the
// export directory.
type Catalog struct {
	exportDir string
}

// NewCatalog creates a catalog over exportDir.
func NewCatalog(exportDir string) *Catalog {
	return &Catalog{exportDir: exportDir}
}

// ListReports returns the CSV reports in the export directory, newest
// first. A missing directory yields an empty list.
func (c *Catalog) ListReports() ([]ReportFile, error) {
	entries, err := os.ReadDir(c.exportDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ReportFile{}, nil
		}
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err,
			"reading export directory %s", c.exportDir)
	}

	reports := make([]ReportFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportFile{
			Name:       entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ModifiedAt.After(reports[j].ModifiedAt)
	})
	return reports, nil
}

// Open opens a report by name for streaming. The name must be a bare
// CSV file name, anything that escapes the export directory is
// rejected.
func (c *Catalog) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, apperrors.NewProcessing(apperrors.CodeInvalidParam,
			"invalid report name %q", name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil, apperrors.NewProcessing(apperrors.CodeInvalidParam,
			"report name %q is not a CSV file", name)
	}

	f, err := os.Open(filepath.Join(c.exportDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewProcessing(apperrors.CodeFileNotFound,
				"report %s not found", name)
		}
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err,
			"opening report %s", name)
	}
	return f, nil
}
