package build

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/goplus/jcbuild/internal/errs"
)

// tempSet owns the temporary directories of one run. Directories are made on
// first use and removed together by cleanup.
type tempSet struct {
	mu sync.Mutex

	root   string // parent of created directories, "" for the system default
	fixed  string // reused work directory; nothing is removed when set
	prefix string
	log    *log.Logger

	dirs []string
	uses map[string]int
}

func newTempSet(root, fixed, runID string, logger *log.Logger) *tempSet {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &tempSet{
		root:   root,
		fixed:  fixed,
		prefix: "jcbuild-" + runID[:8] + "-",
		log:    logger,
		uses:   make(map[string]int),
	}
}

// dir returns a new empty directory for purpose ("classes", "applet", ...).
func (t *tempSet) dir(purpose string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.uses[purpose]++
	if t.fixed != "" {
		name := purpose
		if n := t.uses[purpose]; n > 1 {
			name = fmt.Sprintf("%s-%d", purpose, n)
		}
		dir := filepath.Join(t.fixed, name)
		if err := os.RemoveAll(dir); err != nil {
			return "", errs.IO("clear", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errs.IO("create", dir, err)
		}
		return dir, nil
	}

	if t.root != "" {
		if err := os.MkdirAll(t.root, 0o755); err != nil {
			return "", errs.IO("create", t.root, err)
		}
	}
	dir, err := os.MkdirTemp(t.root, t.prefix+purpose+"-")
	if err != nil {
		return "", errs.IO("make temporary folder in", tempParent(t.root), err)
	}
	t.dirs = append(t.dirs, dir)
	t.log.Debug("temporary folder", "purpose", purpose, "path", dir)
	return dir, nil
}

// cleanup removes every directory made so far. It may be called any number
// of times; a directory that is already gone is not an error.
func (t *tempSet) cleanup() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fixed != "" {
		return nil
	}
	var errList []error
	for _, dir := range t.dirs {
		if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			errList = append(errList, errs.IO("remove", dir, err))
		}
	}
	t.dirs = nil
	return errors.Join(errList...)
}

func tempParent(root string) string {
	if root == "" {
		return os.TempDir()
	}
	return root
}
