package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Key-value store configuration
	KVRestURL   string `long:"kv-rest-url" env:"KV_REST_API_URL" description:"Base URL of the key-value REST store (e.g. https://example.upstash.io)"`
	KVRestToken string `long:"kv-rest-token" env:"KV_REST_API_TOKEN" description:"Bearer token for the key-value REST store"`
	CacheDBPath string `long:"cache-db-path" env:"CACHE_DB_PATH" description:"Path to a local SQLite cache database (used when no REST store is configured)"`

	// Application configuration
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl       string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g. https://pods.example.com)"`
	RefreshBudget int    `long:"refresh-budget" env:"REFRESH_BUDGET" default:"5" description:"Maximum number of full metadata extractions per request"`
	FeedsDir      string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing per-feed override files"`

	// Extractor configuration
	ExtractorPath    string `long:"extractor-path" env:"EXTRACTOR_PATH" default:"yt-dlp" description:"Path to the yt-dlp binary"`
	ExtractorTimeout int    `long:"extractor-timeout" env:"EXTRACTOR_TIMEOUT" default:"60" description:"Extractor call timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"sc-podcast/1.0" description:"User agent string for outbound HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		KVRestURL:        raw.KVRestURL,
		KVRestToken:      raw.KVRestToken,
		CacheDBPath:      raw.CacheDBPath,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		RefreshBudget:    raw.RefreshBudget,
		FeedsDir:         raw.FeedsDir,
		ExtractorPath:    raw.ExtractorPath,
		ExtractorTimeout: raw.ExtractorTimeout,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if cfg.RefreshBudget < 0 {
		cfg.RefreshBudget = 0
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
