package engineconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"env-generator/internal/env"
	"env-generator/internal/logger"
)

// EngineConfigPath is the path to the config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// Environment variables that override the file.
const (
	EnvScene = "ENVGEN_SCENE"
	EnvLog   = "ENVGEN_LOG"
	EnvSeed  = "ENVGEN_SEED"
)

// EnginePrefs holds tool preferences shared by the CLI and the viewer. Persisted
// across runs. Scene content lives in the scene file, not here.
type EnginePrefs struct {
	ScenePath    string `json:"scene_path"`
	LogPath      string `json:"log_path"`
	DefaultSeed  uint64 `json:"default_seed,omitempty"` // 0 = time-based
	GridVisible  bool   `json:"grid_visible"`
	ShowFPS      bool   `json:"show_fps"`
	ShowMemAlloc bool   `json:"show_memalloc"`
	ShowStats    bool   `json:"show_stats"`
	Watch        bool   `json:"watch"` // viewer reloads the scene file when it changes
}

// Default returns default preferences (grid on, watching on, time-based seeds).
func Default() EnginePrefs {
	return EnginePrefs{
		ScenePath:   "scenes/scene.yaml",
		LogPath:     logger.LogFilePath,
		GridVisible: true,
		ShowStats:   true,
		Watch:       true,
	}
}

// Load reads preferences from config/engine.json. If the file is missing or invalid,
// returns Default() and does not create a file.
func Load() (EnginePrefs, error) {
	return LoadFrom(EngineConfigPath)
}

// LoadFrom is Load for an explicit path. Fields missing from the file keep their
// defaults.
func LoadFrom(path string) (EnginePrefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p, nil
}

// WithEnv applies ENVGEN_SCENE, ENVGEN_LOG and ENVGEN_SEED on top of p. A malformed
// seed is reported and leaves p's seed unchanged.
func WithEnv(p EnginePrefs) (EnginePrefs, error) {
	p.ScenePath = env.String(EnvScene, p.ScenePath)
	p.LogPath = env.String(EnvLog, p.LogPath)
	seed, err := env.Uint64(EnvSeed, p.DefaultSeed)
	if err != nil {
		return p, fmt.Errorf("engine config: %w", err)
	}
	p.DefaultSeed = seed
	return p, nil
}

// Save writes preferences to config/engine.json, creating the config directory if needed.
func Save(p EnginePrefs) error {
	return SaveTo(EngineConfigPath, p)
}

// SaveTo is Save for an explicit path.
func SaveTo(path string, p EnginePrefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve loads .env (if present), then the config file, then applies environment
// overrides.
func Resolve() (EnginePrefs, error) {
	if err := env.Load(".env"); err != nil {
		return Default(), err
	}
	p, _ := Load()
	return WithEnv(p)
}
