package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/signal-scout/internal/model"
)

// PreferenceStore persists a single UserPreferences document as a JSON
// object file. Unlike the list stores it is not an array, so it gets its
// own small load/save path.
type PreferenceStore struct {
	path string

	mu    sync.RWMutex
	prefs model.UserPreferences
}

// NewPreferenceStore loads preferences from path, defaulting to an empty
// document on a missing or corrupt file.
func NewPreferenceStore(path string) *PreferenceStore {
	p := &PreferenceStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("memory: failed to read preferences, using defaults",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return p
	}
	if err := json.Unmarshal(data, &p.prefs); err != nil {
		zap.L().Warn("memory: corrupt preferences file, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		p.prefs = model.UserPreferences{}
	}
	return p
}

// Get returns the current preferences.
func (p *PreferenceStore) Get() model.UserPreferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.prefs
}

// Update applies a mutation and persists the result.
func (p *PreferenceStore) Update(fn func(model.UserPreferences) model.UserPreferences) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := fn(p.prefs)
	next.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return eris.Wrap(err, "memory: create preferences directory")
	}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return eris.Wrap(err, "memory: marshal preferences")
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return eris.Wrap(err, "memory: write preferences")
	}

	p.prefs = next
	return nil
}

// EffectiveMinConfidence returns the user override when set, else the
// pipeline default.
func (p *PreferenceStore) EffectiveMinConfidence(defaultThreshold float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.prefs.MinConfidence != nil {
		return *p.prefs.MinConfidence
	}
	return defaultThreshold
}
