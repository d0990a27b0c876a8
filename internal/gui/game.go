package gui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	log "github.com/sirupsen/logrus"

	"github.com/amalg/go-digger/internal/game"
)

var (
	skyColor    = color.RGBA{30, 58, 138, 255}
	groundColor = color.RGBA{107, 68, 35, 255}
	goldColor   = color.RGBA{255, 215, 0, 255}
	playerColor = color.RGBA{0, 200, 83, 255}
	crackColor  = color.RGBA{0, 0, 0, 255}
)

// keyBindings maps each input action to the keys that trigger it.
var keyBindings = struct {
	left, right, up, down []ebiten.Key
}{
	left:  []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft},
	right: []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight},
	up:    []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp, ebiten.KeySpace},
	down:  []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown},
}

// Game is the windowed frontend. Ebiten calls Update at the engine's tick
// rate, so each Update runs exactly one simulation tick.
type Game struct {
	engine    *game.Engine
	popups    []*popup
	lastMoney int
	snap      game.Snapshot
	pressed   func(ebiten.Key) bool
	log       log.FieldLogger
}

// NewGame creates a windowed frontend for engine.
func NewGame(engine *game.Engine, logger log.FieldLogger) *Game {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Game{
		engine:  engine,
		snap:    engine.Snapshot(0),
		pressed: ebiten.IsKeyPressed,
		log:     logger.WithField("component", "gui"),
	}
}

// Update runs one tick with the keys currently held.
func (g *Game) Update() error {
	if g.pressed(ebiten.KeyEscape) || g.pressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	state := g.engine.Step(readInput(g.pressed))
	g.snap = g.engine.Snapshot(0)

	if gained := state.Money - g.lastMoney; gained > 0 {
		box := state.Box()
		g.popups = append(g.popups, newPopup(gained, box.X+box.W/2, box.Y))
		g.log.WithField("money", state.Money).Debug("Reward collected")
	}
	g.lastMoney = state.Money

	g.popups = updatePopups(g.popups, float32(g.engine.Config.TickSeconds()))
	return nil
}

// readInput samples the held keys into one intent snapshot.
func readInput(pressed func(ebiten.Key) bool) game.PlayerInput {
	held := func(keys []ebiten.Key) bool {
		for _, k := range keys {
			if pressed(k) {
				return true
			}
		}
		return false
	}
	return game.PlayerInput{
		Left:  held(keyBindings.left),
		Right: held(keyBindings.right),
		Up:    held(keyBindings.up),
		Down:  held(keyBindings.down),
	}
}

// Draw renders the visible rows, the player and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)

	snap := g.snap
	camera := snap.Player.CameraOffset
	size := float32(snap.TileSize)

	for r := 0; r < snap.Rows(); r++ {
		row := snap.FirstRow + r
		y := float32(float64(row)*snap.TileSize - camera)
		for col := 0; col < snap.Width; col++ {
			tile, _ := snap.TileAt(row, col)
			if !tile.Type.Solid() {
				continue
			}
			x := float32(col) * size
			vector.DrawFilledRect(screen, x, y, size, size, tileColor(tile.Type), false)
			if tile.MaxHP > 0 && tile.HP < tile.MaxHP {
				// Cracks darken as hit points drop.
				wear := 1 - float64(tile.HP)/float64(tile.MaxHP)
				c := crackColor
				c.A = uint8(math.Round(wear * 160))
				vector.DrawFilledRect(screen, x, y, size, size, c, false)
			}
		}
	}

	box := snap.Player.Box()
	vector.DrawFilledRect(screen, float32(box.X), float32(box.Y-camera), float32(box.W), float32(box.H), playerColor, false)

	for _, p := range g.popups {
		ebitenutil.DebugPrintAt(screen, p.text, int(p.x), int(p.y-camera+float64(p.offset)))
	}

	depth := int(math.Floor(box.Bottom() / snap.TileSize))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("$ %d  depth %d\nFPS %.0f  TPS %.0f",
		snap.Player.Money, depth, ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func tileColor(t game.TileType) color.Color {
	if t == game.Gold {
		return goldColor
	}
	return groundColor
}

// Layout fixes the logical screen to the world width and the viewport height.
func (g *Game) Layout(_, _ int) (int, int) {
	return ScreenSize(g.engine.Config)
}

// ScreenSize returns the logical screen size for config.
func ScreenSize(config game.GameConfig) (int, int) {
	return int(float64(config.WorldWidth) * config.TileSize), int(config.ViewportHeight)
}

// Run opens the window and blocks until it is closed.
func Run(engine *game.Engine, logger log.FieldLogger) error {
	w, h := ScreenSize(engine.Config)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Digger")
	ebiten.SetTPS(engine.Config.TickRate)

	if err := ebiten.RunGame(NewGame(engine, logger)); err != nil && err != ebiten.Termination {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
