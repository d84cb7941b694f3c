// Package settings persists small bits of server state between runs,
// most importantly which device the user last worked with.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// persisted is the on-disk settings shape
type persisted struct {
	LastActive   map[string]int64 `json:"lastActive"`
	PinnedDevice string           `json:"pinnedDevice"`
}

// Store manages settings persistence. All methods are safe for
// concurrent use.
type Store struct {
	configDir    string
	settingsPath string

	lastActive   map[string]int64
	lastActiveMu sync.RWMutex

	pinnedDevice string
	pinnedMu     sync.RWMutex
}

// Config for opening a Store
type Config struct {
	// ConfigDir overrides the settings location; empty means the
	// user config dir under AppName.
	ConfigDir string
	AppName   string
}

// Open loads (or initializes) the settings store
func Open(cfg Config) (*Store, error) {
	configDir := cfg.ConfigDir
	if configDir == "" {
		var err error
		configDir, err = os.UserConfigDir()
		if err != nil {
			configDir = os.TempDir()
		}
		configDir = filepath.Join(configDir, cfg.AppName)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}

	s := &Store{
		configDir:    configDir,
		settingsPath: filepath.Join(configDir, "settings.json"),
		lastActive:   make(map[string]int64),
	}
	s.load()
	return s, nil
}

// PinnedDevice returns the device ID selected in a previous run, or ""
func (s *Store) PinnedDevice() string {
	s.pinnedMu.RLock()
	defer s.pinnedMu.RUnlock()
	return s.pinnedDevice
}

// SetPinnedDevice records the current device selection
func (s *Store) SetPinnedDevice(deviceID string) {
	s.pinnedMu.Lock()
	s.pinnedDevice = deviceID
	s.pinnedMu.Unlock()
}

// TouchDevice records when a device was last used
func (s *Store) TouchDevice(deviceID string, timestamp int64) {
	if deviceID == "" {
		return
	}
	s.lastActiveMu.Lock()
	s.lastActive[deviceID] = timestamp
	s.lastActiveMu.Unlock()
}

// LastActive returns the last-used timestamp for a device, 0 if never
func (s *Store) LastActive(deviceID string) int64 {
	s.lastActiveMu.RLock()
	defer s.lastActiveMu.RUnlock()
	return s.lastActive[deviceID]
}

// ConfigDir returns the directory holding persisted state
func (s *Store) ConfigDir() string {
	return s.configDir
}

// Save writes settings to disk
func (s *Store) Save() error {
	s.lastActiveMu.RLock()
	lastActive := make(map[string]int64, len(s.lastActive))
	for k, v := range s.lastActive {
		lastActive[k] = v
	}
	s.lastActiveMu.RUnlock()

	s.pinnedMu.RLock()
	pinned := s.pinnedDevice
	s.pinnedMu.RUnlock()

	data, err := json.Marshal(persisted{
		LastActive:   lastActive,
		PinnedDevice: pinned,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.settingsPath, data, 0644)
}

// Close saves settings before shutdown
func (s *Store) Close() error {
	return s.Save()
}

func (s *Store) load() {
	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		return
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	s.lastActiveMu.Lock()
	if p.LastActive != nil {
		s.lastActive = p.LastActive
	}
	s.lastActiveMu.Unlock()

	s.pinnedMu.Lock()
	s.pinnedDevice = p.PinnedDevice
	s.pinnedMu.Unlock()
}
