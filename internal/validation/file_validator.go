// Package validation checks uploaded table files and local data files
// before they reach the loader.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors so callers can map failures to HTTP status codes.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrInvalidFilename   = errors.New("invalid filename")
)

// Format identifies the table format of an accepted file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FileValidator validates price table files by name, extension, and size.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUpload checks an uploaded file's name and size and returns the
// detected format. Size -1 skips the size check.
func (v *FileValidator) ValidateUpload(filename string, size, maxBytes int64) (Format, error) {
	base := filepath.Base(filename)
	if base == "" || base == "." || strings.Contains(filename, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	if strings.HasPrefix(base, "~$") {
		return "", fmt.Errorf("%w: %s is a temporary Excel file", ErrInvalidFilename, base)
	}

	format, err := formatForExtension(base)
	if err != nil {
		return "", err
	}

	if size >= 0 && maxBytes > 0 && size > maxBytes {
		v.logger.Warn("upload exceeds size limit",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_bytes", maxBytes))
		return "", fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, base, size, maxBytes)
	}

	return format, nil
}

// ValidateDataFile checks a local table file configured for preload at
// startup: it must exist, be readable, and carry a supported extension.
func (v *FileValidator) ValidateDataFile(path string) (Format, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	format, err := formatForExtension(path)
	if err != nil {
		return "", err
	}

	v.logger.Debug("data file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputDirectory ensures an export directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

func formatForExtension(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q; expected .csv or .xlsx", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
