// Package lookup caches command-name-to-path resolution over $PATH.
package lookup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gosh-shell/gosh/core/env"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = errors.New("executable file not found in $PATH")

// Cache resolves command names to executable paths. The scan of $PATH
// directories happens once and is reused until $PATH changes or Invalidate
// is called.
type Cache struct {
	env env.Env

	mu      sync.Mutex
	pathKey string
	cmds    map[string]string
}

// NewCache creates a cache reading $PATH from the given environment.
func NewCache(e env.Env) *Cache {
	return &Cache{env: e}
}

// Invalidate drops the cached command set. The next Resolve rebuilds it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = nil
	c.pathKey = ""
}

// Resolve returns the executable path for name. A name containing a path
// separator bypasses the cache and is checked directly, relative to the
// current directory.
func (c *Cache) Resolve(name string) (string, bool) {
	if strings.Contains(name, string(os.PathSeparator)) {
		if err := findExecutable(name); err == nil {
			return name, true
		}
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()

	path, ok := c.cmds[name]
	return path, ok
}

// Commands returns every cached command name, sorted. Used for "did you
// mean" suggestions and completion.
func (c *Cache) Commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()

	out := make([]string, 0, len(c.cmds))
	for name := range c.cmds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// refreshLocked rebuilds the command map if $PATH changed since the last
// scan. Caller must hold mu.
func (c *Cache) refreshLocked() {
	pathVal := c.env.Getenv("PATH")
	if c.cmds != nil && pathVal == c.pathKey {
		return
	}

	cmds := make(map[string]string)
	dirs := filepath.SplitList(pathVal)
	// Walk in reverse so earlier $PATH entries win conflicts.
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if findExecutable(full) == nil {
				cmds[entry.Name()] = full
			}
		}
	}

	c.cmds = cmds
	c.pathKey = pathVal
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}
