// =============================================================================
// Invoice Regrouper - File Manager
// =============================================================================
//
// This module handles all file-system concerns around a run: discovering
// invoice files in the data directory, deriving the sibling source-PDF and
// output-PDF paths by suffix substitution, naming report files, and
// archiving fully processed invoices.
//
// The suffix substitutions are the whole naming convention: the output
// path is always derived from the source path and the suffixes are
// validated to differ, so the source document can never be overwritten.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileManager handles invoice discovery and archival for one run.
type FileManager struct {
	dataDir    string
	archiveDir string
}

// NewFileManager creates a file manager. An empty archiveDir disables
// archiving.
func NewFileManager(dataDir, archiveDir string) *FileManager {
	return &FileManager{dataDir: dataDir, archiveDir: archiveDir}
}

// DiscoverInvoices lists invoice files in the data directory, sorted by
// name ascending. Provider exports embed the billing period in the name,
// so the last entry is the newest invoice.
func (fm *FileManager) DiscoverInvoices(invoiceSuffix string) ([]string, error) {
	entries, err := os.ReadDir(fm.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), invoiceSuffix) {
			files = append(files, filepath.Join(fm.dataDir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// ArchiveInvoice moves a fully processed invoice file into the archive
// directory, keeping its base name. Archiving disabled returns the
// original path unchanged.
func (fm *FileManager) ArchiveInvoice(path string) (string, error) {
	if fm.archiveDir == "" {
		return path, nil
	}
	if err := os.MkdirAll(fm.archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := filepath.Join(fm.archiveDir, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return target, nil
}

// =============================================================================
// PATH DERIVATION
// =============================================================================

// SubstituteSuffix derives a sibling path by replacing oldSuffix with
// newSuffix. The path must carry oldSuffix and the suffixes must differ.
func SubstituteSuffix(path, oldSuffix, newSuffix string) (string, error) {
	if oldSuffix == newSuffix {
		return "", fmt.Errorf("suffixes must differ (both %q)", oldSuffix)
	}
	if !strings.HasSuffix(path, oldSuffix) {
		return "", fmt.Errorf("path %q does not end in %q", path, oldSuffix)
	}
	return strings.TrimSuffix(path, oldSuffix) + newSuffix, nil
}

// GenerateReportFileName builds a collision-free report file name:
// <prefix>_<timestamp>_<uuid><ext>.
func GenerateReportFileName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s",
		prefix,
		time.Now().Format("20060102_150405"),
		uuid.New().String(),
		ext,
	)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
