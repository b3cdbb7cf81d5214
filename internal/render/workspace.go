package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// workspace is the private intermediate directory of one run.
type workspace struct {
	dir    string
	format string

	once sync.Once
	err  error
}

func newWorkspace(root, runID, format string) (*workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("work directory is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	dir := filepath.Join(root, "run-"+runID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &workspace{dir: dir, format: format}, nil
}

// artifact returns a fresh collision-free location for an intermediate.
func (w *workspace) artifact(kind string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.%s", kind, uuid.NewString(), w.format))
}

// cleanup removes the run directory. Only the first call has any effect.
func (w *workspace) cleanup() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}
