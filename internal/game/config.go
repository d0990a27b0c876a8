package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (GameConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads path, or returns DefaultConfig when path is empty.
func LoadConfigOrDefault(path string) (GameConfig, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks that the configuration describes a playable world.
//
// The collision clamp moves a box to contact in a single step, so per-tick
// speeds must stay below one tile and the player must fit inside one tile.
func (c GameConfig) Validate() error {
	var errs []error

	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		errs = append(errs, fmt.Errorf("world dimensions must be positive, got %dx%d", c.WorldWidth, c.WorldHeight))
	}
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tile_size must be positive, got %g", c.TileSize))
	}
	if c.AboveGroundRows < 0 || c.AboveGroundRows > c.WorldHeight {
		errs = append(errs, fmt.Errorf("above_ground_rows must be within [0, %d], got %d", c.WorldHeight, c.AboveGroundRows))
	}
	if c.TileMaxHP <= 0 {
		errs = append(errs, fmt.Errorf("tile_max_hp must be positive, got %d", c.TileMaxHP))
	}
	if c.GoldChance < 0 || c.GoldChance > 1 {
		errs = append(errs, fmt.Errorf("gold_chance must be within [0, 1], got %g", c.GoldChance))
	}
	if c.PlayerSize <= 2 || c.PlayerSize > c.TileSize {
		errs = append(errs, fmt.Errorf("player_size must be within (2, tile_size], got %g", c.PlayerSize))
	}
	speeds := []struct {
		name  string
		value float64
	}{
		{"horizontal_speed", c.HorizontalSpeed},
		{"jump_speed", c.JumpSpeed},
		{"gravity", c.Gravity},
	}
	for _, s := range speeds {
		if s.value < 0 || s.value >= c.TileSize {
			errs = append(errs, fmt.Errorf("%s must be within [0, tile_size), got %g", s.name, s.value))
		}
	}
	if c.DigCooldown < 0 {
		errs = append(errs, fmt.Errorf("dig_cooldown must not be negative, got %s", c.DigCooldown))
	}
	if c.GoldReward < 0 {
		errs = append(errs, fmt.Errorf("gold_reward must not be negative, got %d", c.GoldReward))
	}
	if c.CameraFollowY < 0 {
		errs = append(errs, fmt.Errorf("camera_follow_y must not be negative, got %g", c.CameraFollowY))
	}
	if c.WorldWidth > 0 && c.WorldHeight > 0 && c.TileSize > 0 {
		if c.SpawnX < 0 || c.SpawnY < 0 ||
			c.SpawnX+c.PlayerSize > float64(c.WorldWidth)*c.TileSize ||
			c.SpawnY+c.PlayerSize > float64(c.WorldHeight)*c.TileSize {
			errs = append(errs, fmt.Errorf("spawn (%g, %g) puts the player outside the world", c.SpawnX, c.SpawnY))
		}
	}
	if c.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("viewport_height must be positive, got %g", c.ViewportHeight))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", c.TickRate))
	}

	return errors.Join(errs...)
}
