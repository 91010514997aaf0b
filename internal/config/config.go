package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	View       ViewConfig       `json:"view"`
	Slideshow  SlideshowConfig  `json:"slideshow"`
	Thumbnails ThumbnailsConfig `json:"thumbnails"`
	Behavior   BehaviorConfig   `json:"behavior"`
	Keys       []KeyBinding     `json:"keys"`
}

// ViewConfig holds settings of the image view
type ViewConfig struct {
	Background string   `json:"background"` // "#rrggbb" or "#rgb"
	Windowed   bool     `json:"windowed"`
	OneToOne   bool     `json:"oneToOne"` // show new images at 1:1 instead of fitting them
	Info       []string `json:"info"`     // "filename" | "index" | "size" | "dimensions" | "tags"
	ShowMeta   bool     `json:"showMeta"`
	Verbose    bool     `json:"verbose"`
}

// SlideshowConfig holds slideshow settings
type SlideshowConfig struct {
	DelayMillis int `json:"delayMillis"`
}

// ThumbnailsConfig holds preview generation settings
type ThumbnailsConfig struct {
	Policy  string  `json:"policy"`  // "freedesktop" | "local" | "memory" | "none"
	Workers int     `json:"workers"` // 0 = number of CPUs
	Gap     float32 `json:"gap"`
}

// BehaviorConfig holds behavior settings
type BehaviorConfig struct {
	AutoRemove     bool   `json:"autoRemove"`     // drop images that fail to decode
	Recursive      bool   `json:"recursive"`      // descend into directories given on the command line
	WatchDirs      bool   `json:"watchDirs"`      // rescan directory entries when their contents change
	RestoreSort    bool   `json:"restoreSort"`    // reuse the last sort key when none is given
	ReopenLast     bool   `json:"reopenLast"`     // open the most recent collection when started without arguments
	MetadataHelper string `json:"metadataHelper"` // external EXIF dumper, "" disables it
}

// KeyBinding maps one or more hotkeys to an action name. Mode limits the
// binding to one view mode; bindings with a mode win over global ones.
type KeyBinding struct {
	Action string   `json:"action"`
	Keys   []string `json:"keys"`
	Mode   string   `json:"mode,omitempty"`
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		View: ViewConfig{
			Background: "#000000",
		},
		Slideshow: SlideshowConfig{
			DelayMillis: 2000,
		},
		Thumbnails: ThumbnailsConfig{
			Policy: "freedesktop",
			Gap:    5,
		},
		Behavior: BehaviorConfig{
			AutoRemove:     true,
			WatchDirs:      true,
			RestoreSort:    true,
			MetadataHelper: "exiv2",
		},
		Keys: DefaultKeyBindings(),
	}
}

// ConfigPath returns the config file path: ~/.config/liv/config.json
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "liv", "config.json")
}

// Load reads the configuration from the default config file.
func (m *Manager) Load() error {
	return m.LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from path.
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) LoadFrom(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = path
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Printf("Config: failed to create directory %s: %v", configDir, err)
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		log.Printf("Config: creating default config at %s", m.path)
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			log.Printf("Config: failed to save default config: %v", saveErr)
			return saveErr
		}
		return nil
	}
	if err != nil {
		log.Printf("Config: failed to read %s: %v", m.path, err)
		return err
	}

	// Start from the defaults so that sections missing from the file keep them.
	cfg := DefaultConfig()
	cfg.Keys = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("Config: JSON parse error: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil // Don't return error - we're using defaults
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Config: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}
	if len(cfg.Keys) == 0 {
		cfg.Keys = DefaultKeyBindings()
	}

	log.Printf("Config: loaded from %s", m.path)
	m.config = cfg
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		m.path = ConfigPath()
	}
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// SetSlideDelay updates the slideshow delay
func (m *Manager) SetSlideDelay(d time.Duration) {
	m.mu.Lock()
	m.config.Slideshow.DelayMillis = int(d / time.Millisecond)
	m.mu.Unlock()
	m.Save()
}

// SlideDelay returns the slideshow delay as a duration
func (c Config) SlideDelay() time.Duration {
	if c.Slideshow.DelayMillis <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Slideshow.DelayMillis) * time.Millisecond
}

// Validate checks the values json.Unmarshal cannot.
func (c *Config) Validate() error {
	if _, err := ParseColor(c.View.Background); err != nil {
		return err
	}
	switch c.Thumbnails.Policy {
	case "", "freedesktop", "local", "memory", "none":
	default:
		return fmt.Errorf("unknown thumbnail policy %q", c.Thumbnails.Policy)
	}
	for _, b := range c.Keys {
		for _, k := range b.Keys {
			if ParseHotkey(k).IsEmpty() {
				return fmt.Errorf("binding for %q: empty key in %q", b.Action, k)
			}
		}
	}
	return nil
}

// ParseColor reads "#rrggbb" or "#rgb". The empty string is black.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{A: 0xff}, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("color %q: missing '#'", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q: expected 3 or 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// GenerateConfig backs up existing config and creates a fresh default config
// Returns the backup path if a backup was created, or empty string if no existing config
func GenerateConfig(configPath string) (backupPath string, err error) {
	if _, err := os.Stat(configPath); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(configPath), "config.backup."+timestamp+".json")

		data, err := os.ReadFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return backupPath, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}
	return backupPath, nil
}
