package github

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// Capture writes raw API response bodies to sequentially numbered files for
// offline inspection. Each run gets its own directory keyed by a run ID so
// repeated runs never overwrite each other. A nil *Capture is a no-op.
type Capture struct {
	mu  sync.Mutex
	dir string
	seq int
}

// NewCapture creates a capture directory under baseDir for this run.
func NewCapture(baseDir string) (*Capture, error) {
	runID := uuid.NewString()
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	logger.Info("capturing raw responses to %s", dir)
	return &Capture{dir: dir}, nil
}

// Dir returns the directory captures are written to.
func (c *Capture) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Write stores one raw response body. Capture failures are warnings, never
// fatal: losing a debug artifact must not abort a migration run.
func (c *Capture) Write(label string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.seq++
	name := fmt.Sprintf("%04d-%s.json", c.seq, label)
	c.mu.Unlock()

	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		logger.Warn("capture write failed for %s: %v", name, err)
	}
}
