package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-digger/internal/game"
	"github.com/amalg/go-digger/internal/network"
)

// stateUpdateMsg carries a new frame from the network client.
type stateUpdateMsg game.Snapshot

// errMsg carries an error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// FrameSource yields frames from a remote host.
type FrameSource interface {
	StateChan() <-chan game.Snapshot
	Err() error
}

// WatchModel is the Bubbletea model for spectating a remote game.
type WatchModel struct {
	source   FrameSource
	host     string
	tickRate int
	snap     *game.Snapshot
	err      error
	quitting bool
}

// NewWatchModel creates a spectator model fed by client.
func NewWatchModel(client *network.Client, host string) WatchModel {
	return newWatchModel(client, host, client.Config().TickRate)
}

func newWatchModel(source FrameSource, host string, tickRate int) WatchModel {
	return WatchModel{
		source:   source,
		host:     host,
		tickRate: tickRate,
	}
}

// Init starts listening for frames from the host.
func (m WatchModel) Init() tea.Cmd {
	return waitForState(m.source)
}

// Update handles incoming frames and the quit keys.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case stateUpdateMsg:
		snap := game.Snapshot(msg)
		m.snap = &snap
		return m, waitForState(m.source)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the latest frame.
func (m WatchModel) View() string {
	if m.quitting {
		return "Goodbye! ⛏\n"
	}
	if m.err != nil {
		return errorView(m.err)
	}

	title := "⛏ WATCHING"
	if m.host != "" {
		title += " " + m.host
	}
	return View(m.snap, HUDInfo{Title: title, TickRate: m.tickRate, Watching: true})
}

// waitForState returns a Cmd that waits for the next frame from the host.
func waitForState(source FrameSource) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-source.StateChan()
		if !ok {
			if err := source.Err(); err != nil {
				return errMsg{err: fmt.Errorf("host connection closed: %w", err)}
			}
			return errMsg{err: fmt.Errorf("host connection closed")}
		}
		return stateUpdateMsg(snap)
	}
}
