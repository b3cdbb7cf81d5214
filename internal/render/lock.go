package render

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"

	"automix/internal/services"
)

// LockFileName is created in every output directory while a run writes to it.
const LockFileName = ".automix.lock"

type outputLock struct {
	locks []*flock.Flock
}

// lockOutputs takes a non-blocking lock on every distinct directory of
// outputs. Either all locks are held on return or none.
func lockOutputs(outputs map[string]string) (*outputLock, error) {
	dirs := make([]string, 0, len(outputs))
	for _, location := range outputs {
		dir := filepath.Dir(location)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)

	held := &outputLock{}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			held.release()
			return nil, services.Wrap(services.ErrRender, "render", "lock", dir, err)
		}
		lock := flock.New(filepath.Join(dir, LockFileName))
		ok, err := lock.TryLock()
		if err != nil {
			held.release()
			return nil, services.Wrap(services.ErrRender, "render", "lock", dir, err)
		}
		if !ok {
			held.release()
			return nil, services.Wrap(services.ErrRender, "render", "lock",
				fmt.Sprintf("output directory %s is in use by another automix run", dir), nil)
		}
		held.locks = append(held.locks, lock)
	}
	return held, nil
}

func (l *outputLock) release() {
	if l == nil {
		return
	}
	for _, lock := range l.locks {
		_ = lock.Unlock()
	}
	l.locks = nil
}
