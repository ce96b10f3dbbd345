// Package logtail reads the tails of process log files and truncates
// them for the clear-logs command. Reads are whole-file; pm2 logs are
// rotated by the manager, so tails stay small in practice.
package logtail

import (
	"fmt"
	"os"
	"strings"
)

// DefaultLines is the number of trailing log lines shown on the dashboard.
const DefaultLines = 100

// Tail returns the last n lines of the file at path, newline-joined.
// Files with fewer than n lines are returned whole. A single trailing
// newline doesn't count as an extra empty line.
func Tail(path string, n int) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the process manager's listing
	if err != nil {
		return "", fmt.Errorf("reading log %s: %w", path, err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return "", nil
	}

	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n"), nil
}

// Truncate sets the file at path to zero length.
func Truncate(path string) error {
	if err := os.Truncate(path, 0); err != nil {
		return fmt.Errorf("truncating log %s: %w", path, err)
	}
	return nil
}
