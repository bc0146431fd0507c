package tui

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// OpenLogger opens (or creates) the log file at path and returns a logger
// writing to it. The caller closes the returned file.
func OpenLogger(path string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.New(f, "[maildash] ", log.LstdFlags|log.Lmicroseconds), f, nil
}
