package source

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoChatFile = errors.New("no .txt chat file found in export")

// Limit extraction size to 1 GB to prevent decompression bombs (G110)
const maxExtractSize = 1 << 30

// FileSource reads transcripts from the local filesystem. A path ending in
// .zip is treated as a WhatsApp export and its chat .txt is read; any other
// path is read as plain text.
type FileSource struct{}

func (FileSource) Open(_ context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return readZipExport(path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the user
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	return string(data), nil
}

// readZipExport extracts the export to a temp dir, finds the chat .txt and
// reads it. The temp dir is always removed.
func readZipExport(zipPath string) (string, error) {
	tempDir, err := os.MkdirTemp("", "chatstats-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := extractZip(zipPath, tempDir); err != nil {
		return "", fmt.Errorf("extracting zip: %w", err)
	}

	txtFile, err := findChatFile(tempDir)
	if err != nil {
		return "", fmt.Errorf("finding chat file: %w", err)
	}

	data, err := os.ReadFile(txtFile) //nolint:gosec // path inside our temp dir
	if err != nil {
		return "", fmt.Errorf("reading chat file: %w", err)
	}
	return string(data), nil
}

func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		// Sanitize path to prevent zip slip (G305)
		name := filepath.Clean(f.Name)
		if strings.Contains(name, "..") {
			continue
		}
		destPath := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o750); err != nil {
				return err
			}
			continue
		}

		// Media files are irrelevant to the statistics.
		if !strings.HasSuffix(strings.ToLower(name), ".txt") {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
			return err
		}

		if err := extractZipFile(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, destPath string) error {
	outFile, err := os.Create(destPath) //nolint:gosec // sanitized above
	if err != nil {
		return err
	}
	defer outFile.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(outFile, io.LimitReader(rc, maxExtractSize))
	return err
}

// findChatFile returns the first .txt file in dir or any folder below it,
// in lexical walk order.
func findChatFile(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".txt") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", ErrNoChatFile
	}
	return found, nil
}
