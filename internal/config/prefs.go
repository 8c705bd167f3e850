// ABOUTME: Durable sync-preference store backed by a JSON file
// ABOUTME: Missing file yields defaults; writes are atomic

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quinn/skimmer/internal/models"
)

// PrefsFile persists SyncPreferences as JSON at a fixed path.
type PrefsFile struct {
	path string
}

// NewPrefsFile creates a preference store at the given path. An empty
// path uses the default location under the XDG config directory.
func NewPrefsFile(path string) *PrefsFile {
	if path == "" {
		path = filepath.Join(configDir(), "prefs.json")
	}
	return &PrefsFile{path: path}
}

// Load reads preferences, returning defaults when none are stored yet.
func (p *PrefsFile) Load() (models.SyncPreferences, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultSyncPreferences(), nil
		}
		return models.SyncPreferences{}, err
	}

	var prefs models.SyncPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return models.SyncPreferences{}, fmt.Errorf("parse preferences: %w", err)
	}
	return prefs, nil
}

// Save persists preferences atomically.
func (p *PrefsFile) Save(prefs models.SyncPreferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(p.path, data)
}
