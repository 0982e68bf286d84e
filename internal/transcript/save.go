package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoText is returned when saving or speaking an empty transcript.
var ErrNoText = errors.New("no text")

// FileName returns the default file name for a transcript saved at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("sign_translation_%s.txt", t.Format("20060102_150405"))
}

// Save writes text into dir under FileName(now) and returns the file path.
// The file is written atomically (temp file + rename).
func Save(dir, text string, now time.Time) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create transcript directory: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	if err := atomicWrite(path, []byte(text)); err != nil {
		return "", err
	}
	return path, nil
}

// atomicWrite writes data to a temporary file in the same directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".transcript-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
