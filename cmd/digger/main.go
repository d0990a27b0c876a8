package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/amalg/go-digger/internal/discovery"
	"github.com/amalg/go-digger/internal/game"
	"github.com/amalg/go-digger/internal/network"
	"github.com/amalg/go-digger/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: built-in settings)")
	seed := flag.Int64("seed", 0, "World seed (overrides the config; 0 keeps it)")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	serve := flag.String("serve", "", "Host a spectator feed on this address (e.g. :9999)")
	name := flag.String("name", hostName(), "Name advertised to spectators")
	fps := flag.Int("fps", 0, "Frames per second (default: the tick rate)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	// Redirect log output IMMEDIATELY: any stderr output corrupts
	// Bubbletea's terminal rendering.
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
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	config, err := game.LoadConfigOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		config.Seed = *seed
	}

	engine := game.NewEngine(config, nil, logger)

	var shutdown []func()
	if *serve != "" {
		stop, err := startFeed(*serve, *name, engine, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start spectator feed: %v\n", err)
			os.Exit(1)
		}
		shutdown = append(shutdown, stop)
	}
	cleanup := func() {
		for _, fn := range shutdown {
			fn()
		}
	}

	// Handle OS signals for clean shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	p := tea.NewProgram(ui.NewModel(engine, *fps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	cleanup()
	state := engine.State()
	fmt.Printf("Finished with $%d at %s\n", state.Money, state.Position)
}

// startFeed hosts the spectator feed and advertises it on the LAN.
func startFeed(addr, name string, engine *game.Engine, logger *log.Logger) (func(), error) {
	server := network.NewServer(addr, engine, logger)
	if err := server.Start(); err != nil {
		return nil, err
	}

	_, port, err := net.SplitHostPort(server.Addr())
	if err != nil {
		server.Stop()
		return nil, fmt.Errorf("feed address: %w", err)
	}

	info := discovery.SessionInfo{
		HostName: name,
		FeedAddr: net.JoinHostPort(localIP(), port),
	}
	broadcaster := discovery.NewBroadcaster(info, 0, logger)
	if err := broadcaster.Start(); err != nil {
		// Spectators can still connect with -addr.
		logger.WithError(err).Warn("LAN discovery disabled")
		return server.Stop, nil
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(discovery.BroadcastInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				state := engine.State()
				depth := int(math.Floor(state.Box().Bottom() / engine.Config.TileSize))
				broadcaster.UpdateStats(server.ViewerCount(), state.Money, depth)
			}
		}
	}()

	return func() {
		close(done)
		broadcaster.Stop()
		server.Stop()
	}, nil
}

// localIP picks the first non-loopback IPv4 address, falling back to loopback.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "127.0.0.1"
}

func hostName() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "digger"
}
