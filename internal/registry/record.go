package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteRecord writes a liveness record containing pid as decimal text.
// The worker calls this for itself once its listener is bound.
func WriteRecord(path string, pid int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	content := fmt.Sprintf("%d\n", pid)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write liveness record: %w", err)
	}

	return nil
}

// ReadRecord reads the process id from a liveness record.
// The raw os error is returned unwrapped for missing files so callers can
// keep using os.IsNotExist.
func ReadRecord(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("invalid pid in liveness record: %q", pidStr)
	}

	return pid, nil
}

// RemoveRecord removes a liveness record. Missing files are not an error.
func RemoveRecord(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove liveness record: %w", err)
	}
	return nil
}
