package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-digger/internal/game"
)

const (
	// holdWindow is how long a key press counts as held. Terminals only
	// report presses, so a held key is one whose auto-repeat keeps arriving.
	holdWindow = 180 * time.Millisecond
	// maxFrameTime caps the time fed to the accumulator after a stall.
	maxFrameTime = 250 * time.Millisecond
)

// frameMsg fires once per rendered frame.
type frameMsg time.Time

// action is one of the four named input actions.
type action int

const (
	actLeft action = iota
	actRight
	actUp
	actDown
)

// keyActions maps terminal keys to actions.
var keyActions = map[string]action{
	"a": actLeft, "left": actLeft,
	"d": actRight, "right": actRight,
	"w": actUp, "up": actUp, " ": actUp,
	"s": actDown, "down": actDown,
}

// Model is the Bubbletea model for local play. It owns the frame loop: every
// frame feeds elapsed time into the engine's fixed-timestep accumulator.
type Model struct {
	engine    *game.Engine
	frameRate int
	held      map[action]time.Time // Expiry of each held action
	lastFrame time.Time
	snap      *game.Snapshot
	rows      int
	fps       *fpsCounter
	quitting  bool
}

// NewModel creates a play model driving engine at frameRate frames per second.
func NewModel(engine *game.Engine, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = engine.Config.TickRate
	}
	return Model{
		engine:    engine,
		frameRate: frameRate,
		held:      make(map[action]time.Time),
		fps:       &fpsCounter{},
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return nextFrame(m.frameRate)
}

// Update handles key presses, resizes and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg, time.Now())

	case tea.WindowSizeMsg:
		m.rows = msg.Height - 1

	case frameMsg:
		now := time.Time(msg)
		m.advance(now)
		return m, nextFrame(m.frameRate)
	}

	return m, nil
}

// advance runs the simulation for the time since the previous frame.
func (m *Model) advance(now time.Time) {
	var dt time.Duration
	if !m.lastFrame.IsZero() {
		dt = min(now.Sub(m.lastFrame), maxFrameTime)
	}
	m.lastFrame = now

	m.engine.Advance(dt.Seconds(), m.input(now))
	snap := m.engine.Snapshot(m.rows)
	m.snap = &snap
	m.fps.frame(now)
}

// input samples the held actions into one intent snapshot.
func (m Model) input(now time.Time) game.PlayerInput {
	held := func(a action) bool {
		until, ok := m.held[a]
		return ok && now.Before(until)
	}
	return game.PlayerInput{
		Left:  held(actLeft),
		Right: held(actRight),
		Up:    held(actUp),
		Down:  held(actDown),
	}
}

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye! ⛏\n"
	}
	return View(m.snap, HUDInfo{FPS: m.fps.rate, TickRate: m.engine.Config.TickRate})
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg, now time.Time) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	default:
		a, ok := keyActions[key]
		if !ok {
			return m, nil
		}
		m.held[a] = now.Add(holdWindow)
		// Opposite directions cancel the older press.
		switch a {
		case actLeft:
			delete(m.held, actRight)
		case actRight:
			delete(m.held, actLeft)
		case actUp:
			delete(m.held, actDown)
		case actDown:
			delete(m.held, actUp)
		}
	}

	return m, nil
}

// nextFrame schedules the next frame tick.
func nextFrame(frameRate int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(frameRate), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// fpsCounter measures rendered frames per second over one-second windows.
type fpsCounter struct {
	start  time.Time
	frames int
	rate   float64
}

func (c *fpsCounter) frame(now time.Time) {
	if c.start.IsZero() {
		c.start = now
	}
	c.frames++
	if elapsed := now.Sub(c.start); elapsed >= time.Second {
		c.rate = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.start = now
	}
}

// errorView renders a fatal error.
func errorView(err error) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ff4444")).
		Render("Error: "+err.Error()) + "\n"
}
