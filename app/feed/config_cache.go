package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Override carries optional per-feed presentation and behavior settings,
// loaded from <FEEDS_DIR>/<name>.yml. Everything works without one.
type Override struct {
	Name                string // Derived from filename (without .yml extension)
	Path                string `yaml:"path"`
	Title               string `yaml:"title"`
	Description         string `yaml:"description"`
	Language            string `yaml:"language"`
	MaxItems            int    `yaml:"max_items"`
	SyntheticTimestamps *bool  `yaml:"synthetic_timestamps"`
}

type ConfigCache struct {
	feedsDir string
	cache    map[string]*Override
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Override),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		name := fileName[:len(fileName)-4] // Remove .yml extension

		override, err := cc.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Feed override loaded", "name", name, "path", override.Path)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(name string) (*Override, error) {
	configFile := filepath.Join(cc.feedsDir, name+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var override Override
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	override.Name = name
	override.Path = CanonicalFeedPath(override.Path)

	if err := cc.validate(&override); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[override.Path] = &override

	return &override, nil
}

// GetOverride looks up the override for a canonical feed path. Absence is
// the common case.
func (cc *ConfigCache) GetOverride(feedPath string) (*Override, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	override, ok := cc.cache[feedPath]
	return override, ok
}

func (cc *ConfigCache) GetOverrideCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) validate(override *Override) error {
	if override.Path == "" {
		return fmt.Errorf("path is required")
	}
	if override.MaxItems < 0 {
		return fmt.Errorf("max_items must be non-negative")
	}
	return nil
}

// CanonicalFeedPath trims the request path into the platform-relative feed
// identifier ("user/likes", "artist/sets/mix").
func CanonicalFeedPath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// syntheticSegments marks feed types whose native timestamps reflect the
// wrong event (e.g. a like's action date) or are missing entirely.
var syntheticSegments = map[string]bool{
	"likes":   true,
	"reposts": true,
	"sets":    true,
}

// SyntheticTimestamps reports whether a feed should use first-seen tracking
// for publication dates. An override wins over path-based detection.
func SyntheticTimestamps(feedPath string, override *Override) bool {
	if override != nil && override.SyntheticTimestamps != nil {
		return *override.SyntheticTimestamps
	}
	for _, segment := range strings.Split(feedPath, "/") {
		if syntheticSegments[segment] {
			return true
		}
	}
	return false
}
