package stealth

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// CookieRecord is one persisted cookie. The shape matches what the browser
// reports so records round-trip through the jar without loss.
type CookieRecord struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
}

// CookieJar is a shared local cookie store backed by a single JSON file.
//
// Persistence is best-effort: load and save failures are logged and swallowed,
// never surfaced to the calling operation. The mutex makes concurrent
// read-modify-write cycles atomic with respect to each other; the file itself
// is still last-writer-wins across processes.
type CookieJar struct {
	mu   sync.Mutex
	path string
}

// NewCookieJar creates a jar backed by the file at path.
func NewCookieJar(path string) *CookieJar {
	return &CookieJar{path: path}
}

// Load reads the persisted cookies. A missing or unreadable jar yields nil.
func (j *CookieJar) Load() []CookieRecord {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cookie jar: load failed", "path", j.path, "error", err)
		}
		return nil
	}

	var cookies []CookieRecord
	if err := json.Unmarshal(data, &cookies); err != nil {
		slog.Warn("cookie jar: corrupt store, starting empty", "path", j.path, "error", err)
		return nil
	}
	return cookies
}

// Save replaces the persisted cookies. Failures are logged and swallowed.
func (j *CookieJar) Save(cookies []CookieRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(cookies)
	if err != nil {
		slog.Warn("cookie jar: marshal failed", "error", err)
		return
	}

	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("cookie jar: mkdir failed", "dir", dir, "error", err)
			return
		}
	}
	if err := os.WriteFile(j.path, data, 0o644); err != nil {
		slog.Warn("cookie jar: save failed", "path", j.path, "error", err)
	}
}
