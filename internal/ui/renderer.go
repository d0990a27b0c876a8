package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-digger/internal/game"
)

// Color palette
var (
	// Tile styles
	airStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1e3a8a")).
			Foreground(lipgloss.Color("#1e3a8a"))

	groundStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#6b4423")).
			Foreground(lipgloss.Color("#8b5a2b"))

	goldStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#6b4423")).
			Foreground(lipgloss.Color("#ffd700")).
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#00c853")).
			Foreground(lipgloss.Color("#00c853"))

	// HUD styles
	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	moneyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffd700")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// RenderWorld draws the rows held by the snapshot. Each tile is 2 characters
// wide and one line tall; the player is drawn on the tile under its centre.
func RenderWorld(snap *game.Snapshot) string {
	if snap == nil || snap.Rows() == 0 {
		return "Waiting for world..."
	}

	player := snap.Player.Box()
	cx := (player.Left() + player.Right()) / 2
	cy := (player.Top() + player.Bottom()) / 2
	playerCol := int(math.Floor(cx / snap.TileSize))
	playerRow := int(math.Floor(cy / snap.TileSize))

	rows := make([]string, 0, snap.Rows())
	for r := 0; r < snap.Rows(); r++ {
		row := snap.FirstRow + r
		var b strings.Builder
		for col := 0; col < snap.Width; col++ {
			if row == playerRow && col == playerCol {
				b.WriteString(playerStyle.Render("██"))
				continue
			}
			tile, _ := snap.TileAt(row, col)
			b.WriteString(renderTile(tile))
		}
		rows = append(rows, b.String())
	}

	return strings.Join(rows, "\n")
}

// renderTile picks a glyph by material and remaining hit points.
func renderTile(tile game.Tile) string {
	switch tile.Type {
	case game.Ground:
		return groundStyle.Render(damageGlyph(tile))
	case game.Gold:
		return goldStyle.Render(damageGlyph(tile))
	default:
		return airStyle.Render("  ")
	}
}

// damageGlyph shades a tile lighter as it loses hit points.
func damageGlyph(tile game.Tile) string {
	if tile.MaxHP <= 0 {
		return "██"
	}
	switch ratio := float64(tile.HP) / float64(tile.MaxHP); {
	case ratio > 0.99:
		return "██"
	case ratio > 0.6:
		return "▓▓"
	case ratio > 0.3:
		return "▒▒"
	default:
		return "░░"
	}
}

// HUDInfo carries the numbers the HUD shows that are not part of a snapshot.
type HUDInfo struct {
	Title    string
	FPS      float64
	TickRate int
	Watching bool
}

// RenderHUD renders the heads-up display: money, depth and the tile under foot.
func RenderHUD(snap *game.Snapshot, info HUDInfo) string {
	if snap == nil {
		return ""
	}

	var parts []string

	title := info.Title
	if title == "" {
		title = "⛏ DIGGER"
	}
	parts = append(parts, titleStyle.Render(title))
	parts = append(parts, "")

	p := snap.Player
	parts = append(parts, moneyStyle.Render(fmt.Sprintf("$ %d", p.Money)))
	parts = append(parts, fmt.Sprintf("Depth: row %d", int(math.Floor(p.Box().Bottom()/snap.TileSize))))

	ground := dimStyle.Render("airborne")
	if p.OnGround {
		ground = "standing"
	}
	parts = append(parts, ground)

	if under, ok := tileUnderFoot(snap); ok && under.Type.Solid() {
		parts = append(parts, fmt.Sprintf("Below: %s %d/%d", under.Type, under.HP, under.MaxHP))
	}

	if d := snap.LastDig; d.Hit {
		line := fmt.Sprintf("Last dig: %s", d.Type)
		if d.Destroyed {
			line += " (broken)"
		}
		if d.Reward > 0 {
			line += moneyStyle.Render(fmt.Sprintf(" +%d", d.Reward))
		}
		parts = append(parts, line)
	}

	parts = append(parts, "")
	parts = append(parts, dimStyle.Render(fmt.Sprintf("FPS %.0f  TPS %d  tick %d", info.FPS, info.TickRate, snap.Ticks)))
	parts = append(parts, "")
	if info.Watching {
		parts = append(parts, hintStyle.Render("Spectating | Q: Quit"))
	} else {
		parts = append(parts, hintStyle.Render("A/D: Move | W: Jump | S: Dig | Q: Quit"))
	}

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}

// tileUnderFoot returns the tile just below the player's horizontal centre.
func tileUnderFoot(snap *game.Snapshot) (game.Tile, bool) {
	box := snap.Player.Box()
	col := int(math.Floor((box.Left() + box.Right()) / 2 / snap.TileSize))
	row := int(math.Floor((box.Bottom() + 1) / snap.TileSize))
	return snap.TileAt(row, col)
}

// View lays out the world and HUD side by side.
func View(snap *game.Snapshot, info HUDInfo) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		RenderWorld(snap),
		"  ",
		RenderHUD(snap, info),
	) + "\n"
}
