package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_sketchpad._tcp"

// Peer is a Sketchpad found on the local network.
type Peer struct {
	Name string
	Addr string
}

// Advertise announces the remote input endpoint on port via mDNS. Call
// Shutdown on the returned server to stop.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		ServiceType,
		"",
		"",
		port,
		nil,
		[]string{"Sketchpad", "path=" + InputPath},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse collects Sketchpad instances that answer within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	var peers []Peer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{Name: e.Name, Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port)})
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(params)
		close(entries)
	}()

	select {
	case err := <-errCh:
		<-done
		if err != nil {
			return nil, fmt.Errorf("mdns query: %w", err)
		}
		return peers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
