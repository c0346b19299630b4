package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/depressurize/internal/model"
	"gopkg.in/yaml.v3"
)

// Format is a metadata file encoding.
type Format string

// Supported metadata file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// DecodeMetadata reads a list of metadata entries.
func DecodeMetadata(r io.Reader, format Format) ([]model.GameMetadata, error) {
	var entries []model.GameMetadata
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode json metadata: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to decode yaml metadata: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return entries, nil
}

// EncodeMetadata writes a list of metadata entries.
func EncodeMetadata(w io.Writer, format Format, entries []model.GameMetadata) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode yaml metadata: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// ImportFile loads metadata from a JSON or YAML file and saves it. It returns the
// number of entries imported.
func (s *SQLiteStorage) ImportFile(ctx context.Context, path string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	format, err := FormatForPath(path)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path) // #nosec G304 - path is provided by the user
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	entries, err := DecodeMetadata(f, format)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := s.SaveMetadata(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ExportFile writes every stored entry to a JSON or YAML file.
func (s *SQLiteStorage) ExportFile(ctx context.Context, path string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	format, err := FormatForPath(path)
	if err != nil {
		return 0, err
	}

	entries, err := s.queryMetadata(ctx, s.db, `SELECT `+metadataColumns+` FROM games ORDER BY id`)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path) // #nosec G304 - path is provided by the user
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodeMetadata(f, format, entries); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return len(entries), nil
}
