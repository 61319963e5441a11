// ABOUTME: mDNS service discovery for the soundboard remote control
// ABOUTME: Advertises a running soundboard and lets tools find one on the LAN
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service of the remote control API
const ServiceType = "_tilegame-sfx._tcp"

// One mDNS query round while browsing
const queryWindow = 3 * time.Second

// Config holds discovery configuration
type Config struct {
	ServiceName string // Instance name (default: "<hostname>-soundboard")
	Port        int
	Version     string
}

// Soundboard describes a discovered remote control endpoint
type Soundboard struct {
	Name    string
	Host    string
	Port    int
	Path    string // Websocket path from the TXT record
	Version string
}

// Addr returns host:port of the remote control API
func (s *Soundboard) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// Manager advertises this soundboard and browses for others
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	found   chan *Soundboard
	mu      sync.Mutex
	seen    map[string]bool
	browsed sync.Once
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.ServiceName == "" {
		config.ServiceName = defaultServiceName()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
		found:  make(chan *Soundboard, 10),
		seen:   make(map[string]bool),
	}
}

func defaultServiceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "-soundboard"
}

// txtRecords describes the service to browsers
func (m *Manager) txtRecords() []string {
	txt := []string{"path=/ws"}
	if m.config.Version != "" {
		txt = append(txt, "version="+m.config.Version)
	}
	return txt
}

// Advertise announces the remote control API until Stop
func (m *Manager) Advertise() error {
	ifaces, err := net.InterfaceAddrs()
	if err != nil {
		return fmt.Errorf("failed to list interface addresses: %w", err)
	}
	ips := advertisable(ifaces)
	if len(ips) == 0 {
		return fmt.Errorf("no non-loopback IPv4 address to advertise")
	}

	zone, err := mdns.NewMDNSService(m.config.ServiceName, ServiceType, "", "", m.config.Port, ips, m.txtRecords())
	if err != nil {
		return fmt.Errorf("failed to describe service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return fmt.Errorf("failed to start mdns responder: %w", err)
	}
	log.Printf("Advertising %s as %s on port %d", ServiceType, m.config.ServiceName, m.config.Port)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()
	return nil
}

// Browse queries repeatedly until Stop, delivering each soundboard once on Found
func (m *Manager) Browse() {
	m.browsed.Do(func() {
		go func() {
			for m.ctx.Err() == nil {
				m.query(queryWindow, m.deliver)
			}
		}()
	})
}

// Found returns the channel of newly discovered soundboards
func (m *Manager) Found() <-chan *Soundboard {
	return m.found
}

// Stop stops advertising and browsing
func (m *Manager) Stop() {
	m.cancel()
}

func (m *Manager) deliver(s *Soundboard) {
	m.mu.Lock()
	if m.seen[s.Addr()] {
		m.mu.Unlock()
		return
	}
	m.seen[s.Addr()] = true
	m.mu.Unlock()

	log.Printf("Discovered soundboard %s at %s", s.Name, s.Addr())
	select {
	case m.found <- s:
	case <-m.ctx.Done():
	}
}

// query runs one mDNS query round, passing each IPv4 answer to fn
func (m *Manager) query(timeout time.Duration, fn func(*Soundboard)) {
	entries := make(chan *mdns.ServiceEntry, 10)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			if s := fromEntry(entry); s != nil {
				fn(s)
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	if err := mdns.Query(params); err != nil {
		log.Printf("mDNS query failed: %v", err)
	}
	close(entries)
	<-done
}

// Lookup runs a single query and returns every soundboard that answered
func Lookup(timeout time.Duration) []*Soundboard {
	m := NewManager(Config{})
	defer m.Stop()

	var found []*Soundboard
	seen := make(map[string]bool)
	m.query(timeout, func(s *Soundboard) {
		if !seen[s.Addr()] {
			seen[s.Addr()] = true
			found = append(found, s)
		}
	})
	return found
}

// fromEntry converts an mDNS answer, ignoring entries without IPv4
func fromEntry(entry *mdns.ServiceEntry) *Soundboard {
	if entry == nil || entry.AddrV4 == nil {
		return nil
	}
	s := &Soundboard{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Host: entry.AddrV4.String(),
		Port: entry.Port,
		Path: "/ws",
	}
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			s.Path = value
		case "version":
			s.Version = value
		}
	}
	return s
}

// advertisable keeps the non-loopback IPv4 addresses
func advertisable(addrs []net.Addr) []net.IP {
	var ips []net.IP
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.To4() == nil {
			continue
		}
		ips = append(ips, ipnet.IP)
	}
	return ips
}
