package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// BroadcastPort is the UDP port used for session discovery.
	BroadcastPort = 9998
	// BroadcastInterval is how often hosts advertise their session.
	BroadcastInterval = 1 * time.Second
	// SessionExpiry is how long a session stays visible after its last broadcast.
	SessionExpiry = 4 * time.Second
)

// SessionInfo describes a running game that can be watched.
type SessionInfo struct {
	HostName string `json:"host_name"`
	FeedAddr string `json:"feed_addr"` // host:port of the spectator feed
	Viewers  int    `json:"viewers"`
	Money    int    `json:"money"`
	Depth    int    `json:"depth"` // Grid row under the player's feet
}

// --- Broadcaster ---

// Broadcaster periodically sends UDP broadcast packets with session info.
type Broadcaster struct {
	info SessionInfo
	port int
	done chan struct{}
	mu   sync.Mutex
	log  log.FieldLogger
}

// NewBroadcaster creates a session broadcaster. port 0 uses BroadcastPort.
func NewBroadcaster(info SessionInfo, port int, logger log.FieldLogger) *Broadcaster {
	if port == 0 {
		port = BroadcastPort
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Broadcaster{
		info: info,
		port: port,
		done: make(chan struct{}),
		log:  logger.WithField("component", "discovery"),
	}
}

// UpdateStats updates the advertised viewer count and progress.
func (b *Broadcaster) UpdateStats(viewers, money, depth int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.info.Viewers = viewers
	b.info.Money = money
	b.info.Depth = depth
}

// Info returns the currently advertised session.
func (b *Broadcaster) Info() SessionInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info
}

// Start begins broadcasting session info via UDP.
func (b *Broadcaster) Start() error {
	// Use ListenPacket (not DialUDP) so broadcast works on Linux.
	// DialUDP to 255.255.255.255 silently fails without SO_BROADCAST.
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("create broadcast socket: %w", err)
	}

	go b.broadcastLoop(conn)
	return nil
}

// Stop stops the broadcaster.
func (b *Broadcaster) Stop() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

func (b *Broadcaster) broadcastLoop(conn net.PacketConn) {
	defer conn.Close()

	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	// Send immediately on start, then on tick
	b.sendBroadcast(conn)

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.sendBroadcast(conn)
		}
	}
}

func (b *Broadcaster) sendBroadcast(conn net.PacketConn) {
	b.mu.Lock()
	data, err := json.Marshal(b.info)
	b.mu.Unlock()
	if err != nil {
		b.log.WithError(err).Warn("Failed to encode session info")
		return
	}

	// Loopback first: 255.255.255.255 is often dropped by the local firewall.
	loopback := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: b.port}
	if _, err := conn.WriteTo(data, loopback); err != nil {
		b.log.WithError(err).Debug("Loopback broadcast failed")
	}

	conn.WriteTo(data, &net.UDPAddr{IP: net.IPv4bcast, Port: b.port})

	for _, dst := range interfaceBroadcasts() {
		conn.WriteTo(data, &net.UDPAddr{IP: dst, Port: b.port})
	}
}

// interfaceBroadcasts lists the directed broadcast address of every IPv4
// interface that is up and supports broadcast.
func interfaceBroadcasts() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			out = append(out, broadcastAddr(ipnet))
		}
	}
	return out
}

// broadcastAddr computes IP | ^mask for an IPv4 network.
func broadcastAddr(ipnet *net.IPNet) net.IP {
	ip4 := ipnet.IP.To4()
	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}

	broadcast := make(net.IP, 4)
	for i := range broadcast {
		broadcast[i] = ip4[i] | ^mask[i]
	}
	return broadcast
}

// --- Listener ---

// discoveredSession holds a session and when it was last seen.
type discoveredSession struct {
	Info     SessionInfo
	LastSeen time.Time
}

// Listener listens for UDP session advertisements.
type Listener struct {
	sessions map[string]*discoveredSession // keyed by FeedAddr
	port     int
	mu       sync.RWMutex
	conn     *net.UDPConn
	done     chan struct{}
	log      log.FieldLogger
}

// NewListener creates a session listener. port 0 uses BroadcastPort.
func NewListener(port int, logger log.FieldLogger) *Listener {
	if port == 0 {
		port = BroadcastPort
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Listener{
		sessions: make(map[string]*discoveredSession),
		port:     port,
		done:     make(chan struct{}),
		log:      logger.WithField("component", "discovery"),
	}
}

// Start begins listening for session broadcasts.
func (l *Listener) Start() error {
	addr := &net.UDPAddr{
		Port: l.port,
		IP:   net.IPv4zero,
	}

	var err error
	l.conn, err = net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("listen UDP on port %d: %w (is another instance browsing?)", l.port, err)
	}

	go l.listenLoop()
	go l.cleanupLoop()

	return nil
}

// Stop stops the listener.
func (l *Listener) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	if l.conn != nil {
		l.conn.Close()
	}
}

// Sessions returns the currently visible sessions ordered by feed address.
func (l *Listener) Sessions() []SessionInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sessions := make([]SessionInfo, 0, len(l.sessions))
	for _, ds := range l.sessions {
		sessions = append(sessions, ds.Info)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].FeedAddr < sessions[j].FeedAddr
	})
	return sessions
}

// Wait blocks until at least one session is visible or timeout passes.
func (l *Listener) Wait(timeout time.Duration) (SessionInfo, bool) {
	deadline := time.Now().Add(timeout)
	for {
		if sessions := l.Sessions(); len(sessions) > 0 {
			return sessions[0], true
		}
		if time.Now().After(deadline) {
			return SessionInfo{}, false
		}
		select {
		case <-l.done:
			return SessionInfo{}, false
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (l *Listener) listenLoop() {
	buf := make([]byte, 4096)
	for {
		select {
		case <-l.done:
			return
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		l.record(buf[:n], from, time.Now())
	}
}

// record stores one advertisement. Malformed packets are ignored.
func (l *Listener) record(data []byte, from *net.UDPAddr, now time.Time) bool {
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil || info.FeedAddr == "" {
		l.log.WithField("from", from).Debug("Ignoring malformed advertisement")
		return false
	}

	l.mu.Lock()
	if _, ok := l.sessions[info.FeedAddr]; !ok {
		l.log.WithFields(log.Fields{"host": info.HostName, "feed": info.FeedAddr}).Info("Discovered session")
	}
	l.sessions[info.FeedAddr] = &discoveredSession{
		Info:     info,
		LastSeen: now,
	}
	l.mu.Unlock()
	return true
}

func (l *Listener) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.expire(now)
		}
	}
}

// expire forgets sessions not heard from within SessionExpiry.
func (l *Listener) expire(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, ds := range l.sessions {
		if now.Sub(ds.LastSeen) > SessionExpiry {
			delete(l.sessions, addr)
		}
	}
}
