package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/amalg/go-digger/internal/discovery"
	"github.com/amalg/go-digger/internal/network"
	"github.com/amalg/go-digger/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "Host feed address (default: discover one on the LAN)")
	name := flag.String("name", "Viewer", "Your viewer name")
	wait := flag.Duration("wait", 5*time.Second, "How long to look for a host on the LAN")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	flag.Parse()

	logger := log.New()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}

	host := *addr
	if host == "" {
		fmt.Println("Looking for a game on the LAN...")
		session, err := discover(*wait, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Found %s (%d watching)\n", session.HostName, session.Viewers)
		host = session.FeedAddr
	}

	fmt.Printf("Connecting to %s as %s...\n", host, *name)

	client, err := network.NewClient(host, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	p := tea.NewProgram(ui.NewWatchModel(client, host), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// discover waits for the first advertised session.
func discover(wait time.Duration, logger *log.Logger) (discovery.SessionInfo, error) {
	listener := discovery.NewListener(0, logger)
	if err := listener.Start(); err != nil {
		return discovery.SessionInfo{}, err
	}
	defer listener.Stop()

	session, ok := listener.Wait(wait)
	if !ok {
		return discovery.SessionInfo{}, fmt.Errorf("no game found within %s; pass -addr host:port", wait)
	}
	return session, nil
}
