package game

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digger.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
world_width: 12
gold_chance: 0.25
dig_cooldown: 250ms
gold_reward: 7
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.WorldWidth != 12 || config.GoldChance != 0.25 || config.GoldReward != 7 {
		t.Errorf("file values not applied: %+v", config)
	}
	if config.DigCooldown != 250*time.Millisecond {
		t.Errorf("expected 250ms cooldown, got %s", config.DigCooldown)
	}
	// Untouched keys keep their defaults.
	if config.TileSize != 40 || config.TickRate != 60 {
		t.Errorf("defaults lost: tile_size=%g tick_rate=%d", config.TileSize, config.TickRate)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, `
gravity: 45
gold_chance: 2
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"gravity", "gold_chance"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestValidateSpawnOutsideWorld(t *testing.T) {
	config := DefaultConfig()
	config.SpawnX = float64(config.WorldWidth)*config.TileSize - 10

	if err := config.Validate(); err == nil {
		t.Error("spawn past the right edge should be rejected")
	}
}

func TestLoadConfigOrDefault(t *testing.T) {
	config, err := LoadConfigOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config != DefaultConfig() {
		t.Errorf("expected defaults for an empty path, got %+v", config)
	}

	config, err = LoadConfigOrDefault(writeConfig(t, "seed: 42\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Seed != 42 {
		t.Errorf("expected seed 42, got %d", config.Seed)
	}
}

func TestBundledConfigLoads(t *testing.T) {
	config, err := LoadConfig(filepath.Join("..", "..", "configs", "digger.yaml"))
	if err != nil {
		t.Fatalf("configs/digger.yaml: %v", err)
	}
	if config != DefaultConfig() {
		t.Errorf("configs/digger.yaml drifted from defaults: %+v", config)
	}
}
