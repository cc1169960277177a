// Package discovery finds encode servers on the local network via mDNS,
// grounded on the mDNS browse/advertise manager used for player-server
// discovery in the corpus.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_dcpflow-encode._tcp"

// EncodeServer describes one discovered encode server.
type EncodeServer struct {
	Name    string
	Host    string
	Port    int
	LastSeen time.Time
}

// Finder browses for encode servers. Advertising this process as one is
// done separately, by Advertise.
type Finder struct {
	log *slog.Logger

	found chan EncodeServer
}

// NewFinder builds a Finder. A nil logger falls back to slog.Default.
func NewFinder(log *slog.Logger) *Finder {
	if log == nil {
		log = slog.Default()
	}
	return &Finder{log: log, found: make(chan EncodeServer, 16)}
}

// Found returns the channel of discovered servers; Browse sends to it
// until ctx is cancelled.
func (f *Finder) Found() <-chan EncodeServer { return f.found }

// Browse queries for encode servers every interval until ctx is done.
func (f *Finder) Browse(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	f.browseOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.browseOnce(ctx)
		}
	}
}

func (f *Finder) browseOnce(ctx context.Context) {
	entries := make(chan *mdns.ServiceEntry, 16)
	go func() {
		for entry := range entries {
			if entry.AddrV4 == nil {
				continue
			}
			server := EncodeServer{
				Name:     entry.Name,
				Host:     entry.AddrV4.String(),
				Port:     entry.Port,
				LastSeen: time.Now(),
			}
			f.log.Debug("discovered encode server", "name", server.Name, "host", server.Host, "port", server.Port)
			select {
			case f.found <- server:
			case <-ctx.Done():
				return
			}
		}
	}()

	mdns.Query(&mdns.QueryParam{
		Service: serviceType,
		Domain:  "local",
		Timeout: 3 * time.Second,
		Entries: entries,
	})
	close(entries)
}

// Advertise registers this process as an encode server under name,
// returning a shutdown func. Advertisement runs until the returned func
// is called.
func Advertise(name string, port int) (func(), error) {
	ips, err := localIPv4s()
	if err != nil {
		return nil, fmt.Errorf("discovery: local addresses: %w", err)
	}

	service, err := mdns.NewMDNSService(name, serviceType, "", "", port, ips, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: build mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("discovery: start mdns server: %w", err)
	}

	return func() { _ = server.Shutdown() }, nil
}

func localIPv4s() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			if v4 := ipnet.IP.To4(); v4 != nil {
				ips = append(ips, v4)
			}
		}
	}
	return ips, nil
}
