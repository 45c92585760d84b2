// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the corkboard
// service.
//
// Configuration is loaded from a single YAML file specified by:
//   - CORKBOARD_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. The config file is
// the single source of truth; the only expansion performed is
// ${HOME} and similar path variables for portability.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/corkboard/corkboard/lib/ref"
)

// Config is the full configuration for the corkboard service.
type Config struct {
	// Homeserver configures the Matrix connection.
	Homeserver HomeserverConfig `yaml:"homeserver"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Board configures the rooms and the moderator set.
	Board BoardConfig `yaml:"board"`
}

// HomeserverConfig configures the Matrix connection.
type HomeserverConfig struct {
	// URL is the homeserver base URL.
	// Default: http://localhost:6167
	URL string `yaml:"url"`

	// ServerName is the Matrix server name used to build user IDs and
	// room aliases from localparts.
	// Default: corkboard.local
	ServerName string `yaml:"server_name"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for corkboard data.
	Root string `yaml:"root"`

	// State is where runtime state is stored: session.json and the
	// board state file.
	State string `yaml:"state"`
}

// BoardConfig configures the rooms and the moderator set.
type BoardConfig struct {
	// Room is the localpart of the public room approved posts are
	// broadcast to.
	// Default: corkboard
	Room string `yaml:"room"`

	// ApprovalRoom is the localpart of the moderation room that
	// receives approval requests.
	// Default: corkboard-approvals
	ApprovalRoom string `yaml:"approval_room"`

	// Moderators lists the users allowed to approve posts and close
	// any post. Entries are either full Matrix IDs (@name:server) or
	// bare localparts, completed with the configured server name.
	Moderators []string `yaml:"moderators"`

	// StateFile is the board state file name within paths.state.
	// Default: board.cb
	StateFile string `yaml:"state_file"`
}

// Default returns the default configuration. These defaults exist to
// give every field a sensible zero-value before the file is merged in;
// the config file itself is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "corkboard")

	return &Config{
		Homeserver: HomeserverConfig{
			URL:        "http://localhost:6167",
			ServerName: "corkboard.local",
		},
		Paths: PathsConfig{
			Root:  defaultRoot,
			State: filepath.Join(defaultRoot, "state"),
		},
		Board: BoardConfig{
			Room:         "corkboard",
			ApprovalRoom: "corkboard-approvals",
			StateFile:    "board.cb",
		},
	}
}

// Load loads configuration from the CORKBOARD_CONFIG environment
// variable. There are no fallbacks: if CORKBOARD_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("CORKBOARD_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("CORKBOARD_CONFIG environment variable not set; " +
			"set it to the path of your corkboard.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults and expanding ${HOME} and similar path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} patterns in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"CORKBOARD_ROOT": c.Paths.Root,
		"HOME":           os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["CORKBOARD_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.State = expandVars(c.Paths.State, vars)
	c.Board.StateFile = expandVars(c.Board.StateFile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Homeserver.URL == "" {
		errs = append(errs, fmt.Errorf("homeserver.url is required"))
	}
	if c.Homeserver.ServerName == "" {
		errs = append(errs, fmt.Errorf("homeserver.server_name is required"))
	}
	if c.Paths.State == "" {
		errs = append(errs, fmt.Errorf("paths.state is required"))
	}
	if c.Board.Room == "" {
		errs = append(errs, fmt.Errorf("board.room is required"))
	}
	if c.Board.ApprovalRoom == "" {
		errs = append(errs, fmt.Errorf("board.approval_room is required"))
	}
	if len(c.Board.Moderators) == 0 {
		errs = append(errs, fmt.Errorf("board.moderators must name at least one user"))
	}
	if _, err := c.ModeratorIDs(); err != nil {
		errs = append(errs, err)
	}
	if c.Board.StateFile == "" {
		errs = append(errs, fmt.Errorf("board.state_file is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ModeratorIDs resolves the configured moderator entries to full
// Matrix user IDs, completing bare localparts with the server name.
func (c *Config) ModeratorIDs() ([]ref.UserID, error) {
	moderators := make([]ref.UserID, 0, len(c.Board.Moderators))
	for _, entry := range c.Board.Moderators {
		if entry == "" {
			return nil, fmt.Errorf("board.moderators contains an empty entry")
		}
		if entry[0] == '@' {
			userID, err := ref.ParseUserID(entry)
			if err != nil {
				return nil, fmt.Errorf("board.moderators entry %q: %w", entry, err)
			}
			moderators = append(moderators, userID)
			continue
		}
		moderators = append(moderators, ref.MatrixUserID(entry, c.Homeserver.ServerName))
	}
	return moderators, nil
}

// BoardRoomAlias returns the full alias of the public board room.
func (c *Config) BoardRoomAlias() ref.RoomAlias {
	return ref.MatrixRoomAlias(c.Board.Room, c.Homeserver.ServerName)
}

// ApprovalRoomAlias returns the full alias of the moderation room.
func (c *Config) ApprovalRoomAlias() ref.RoomAlias {
	return ref.MatrixRoomAlias(c.Board.ApprovalRoom, c.Homeserver.ServerName)
}

// StateFilePath returns the absolute path of the board state file.
func (c *Config) StateFilePath() string {
	if filepath.IsAbs(c.Board.StateFile) {
		return c.Board.StateFile
	}
	return filepath.Join(c.Paths.State, c.Board.StateFile)
}
