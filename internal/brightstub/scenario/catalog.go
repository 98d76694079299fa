package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/brightchat/pkg/logger"
)

const defaultDebounce = 500 * time.Millisecond

// Catalog is the set of scenarios found in a directory. It can watch the
// directory and reload itself when a scenario file changes.
type Catalog struct {
	mu        sync.RWMutex
	dir       string
	scenarios map[string]*Scenario

	watcher  *fsnotify.Watcher
	debounce time.Duration
	closeCh  chan struct{}
	closed   bool
}

// NewCatalog loads every *.json file of dir. Invalid files are logged and skipped.
func NewCatalog(dir string) (*Catalog, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve scenario dir %q: %w", dir, err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("scenario dir %q: %w", absDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario dir %q is not a directory", absDir)
	}

	c := &Catalog{
		dir:       absDir,
		scenarios: make(map[string]*Scenario),
		debounce:  defaultDebounce,
		closeCh:   make(chan struct{}),
	}
	c.Reload()
	return c, nil
}

// Dir returns the watched directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Get returns the scenario with the given id.
func (c *Catalog) Get(id string) (*Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scenarios[id]
	return s, ok
}

// List returns all scenarios sorted by id.
func (c *Catalog) List() []*Scenario {
	c.mu.RLock()
	out := make([]*Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, s)
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Scenario) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Reload rescans the directory and replaces the catalog content.
// It returns the number of scenarios loaded.
func (c *Catalog) Reload() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		logger.Warn("[ScenarioCatalog] scan %s: %v", c.dir, err)
		return 0
	}

	next := make(map[string]*Scenario, len(matches))
	for _, path := range matches {
		s, err := LoadFile(path)
		if err != nil {
			logger.Warn("[ScenarioCatalog] skip %s: %v", filepath.Base(path), err)
			continue
		}
		if prev, dup := next[s.ID]; dup {
			logger.Warn("[ScenarioCatalog] duplicate id %q in %s and %s, keeping the first", s.ID, filepath.Base(prev.Source), filepath.Base(path))
			continue
		}
		next[s.ID] = s
	}

	c.mu.Lock()
	c.scenarios = next
	c.mu.Unlock()

	logger.Info("[ScenarioCatalog] loaded %d scenarios from %s", len(next), c.dir)
	return len(next)
}

// Watch starts reloading the catalog after scenario files change.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", c.dir, err)
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	go c.watchLoop(watcher)
	logger.Debug("[ScenarioCatalog] watcher started for %s", c.dir)
	return nil
}

// Close stops the watcher, if any.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closeCh)
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *Catalog) watchLoop(watcher *fsnotify.Watcher) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(c.debounce, func() { c.Reload() })
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 &&
				strings.HasSuffix(event.Name, ".json") {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("[ScenarioCatalog] watcher error: %v", err)
		case <-c.closeCh:
			return
		}
	}
}
