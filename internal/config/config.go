// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package config provides layered configuration loading via Koanf v2.
//
// Configuration sources, highest priority last:
//  1. Built-in defaults
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (explicit mapping table, see koanf.go)
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the NMF dashboard server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Data     DataConfig     `koanf:"data"`
	Graph    GraphConfig    `koanf:"graph"`
	Security SecurityConfig `koanf:"security"`
	Artwork  ArtworkConfig  `koanf:"artwork"`
	Backup   BackupConfig   `koanf:"backup"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// DataConfig locates the CSV inputs produced by the offline ML pipeline.
type DataConfig struct {
	// PredictionsDir holds the weekly MM-DD-YY_Album_Recommendations.csv files.
	PredictionsDir string `koanf:"predictions_dir"`

	// Dir holds supporting CSVs: nmf_album_covers.csv, nmf_album_links.csv,
	// nmf_similar_artists.csv, liked_artists_only_similar.csv,
	// df_cleaned_pre_standardized.csv and nuked_albums.csv.
	Dir string `koanf:"dir"`

	// ReloadOnStart reimports all CSVs into DuckDB at startup.
	ReloadOnStart bool `koanf:"reload_on_start"`
}

// GraphConfig tunes the artist similarity graph feature.
type GraphConfig struct {
	// ReferenceArtist is the fixed root the distance query targets.
	ReferenceArtist string `koanf:"reference_artist"`

	// MaxNeighbors bounds the per-path-node neighborhood in the rendered subgraph.
	MaxNeighbors int `koanf:"max_neighbors"`

	// LayoutSeed seeds the spring layout for reproducible figures.
	LayoutSeed int64 `koanf:"layout_seed"`

	// CachePath is the BadgerDB directory for content-hash graph memoization.
	// Empty disables the cache.
	CachePath string `koanf:"cache_path"`

	// CacheTTL bounds how long a memoized graph snapshot is served.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// SecurityConfig holds authentication and rate-limit settings.
// There is exactly one admin account; everyone else is anonymous.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // "jwt" or "none"
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// ArtworkConfig tunes the cover URL prober used by the Album Fixer.
type ArtworkConfig struct {
	Enabled        bool          `koanf:"enabled"`
	ProbeTimeout   time.Duration `koanf:"probe_timeout"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
	Burst          int           `koanf:"burst"`
}

// BackupConfig holds backup manager settings.
type BackupConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Dir           string        `koanf:"dir"`
	Interval      time.Duration `koanf:"interval"`
	ScheduleOn    bool          `koanf:"schedule_enabled"`
	RetentionDays int           `koanf:"retention_days"`
	MaxBackups    int           `koanf:"max_backups"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment != "production"
}

// Validate checks the configuration for contradictions and missing
// required values. It is called by Load after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Data.PredictionsDir == "" {
		return fmt.Errorf("data.predictions_dir is required")
	}
	if c.Graph.ReferenceArtist == "" {
		return fmt.Errorf("graph.reference_artist is required")
	}
	if c.Graph.MaxNeighbors < 0 {
		return fmt.Errorf("graph.max_neighbors must be >= 0, got %d", c.Graph.MaxNeighbors)
	}

	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters when auth_mode=jwt")
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required when auth_mode=jwt")
		}
		if len(c.Security.AdminPassword) < 8 {
			return fmt.Errorf("security.admin_password must be at least 8 characters")
		}
	case "none":
		// Development only; main() logs a prominent warning.
	default:
		return fmt.Errorf("security.auth_mode must be jwt or none, got %q", c.Security.AuthMode)
	}

	if c.Backup.Enabled && c.Backup.Dir == "" {
		return fmt.Errorf("backup.dir is required when backup.enabled=true")
	}
	if c.Backup.Enabled && c.Backup.ScheduleOn && c.Backup.Interval <= 0 {
		return fmt.Errorf("backup.interval must be positive when the schedule is enabled")
	}

	return nil
}
