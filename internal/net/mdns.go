package net

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

const serviceType = "_lineduel._tcp"

var ErrNoRelay = errors.New("no relay found on the local network")

// Advertise announces a relay on port so peers on the LAN can find it. The
// arena code goes into the TXT record. Shut the returned server down on exit.
func Advertise(port int, arena string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"arena=" + arena})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Info().Str("component", "mdns").Str("service", serviceType).Int("port", port).Msg("advertising relay")
	return server, nil
}

// RelayEntry is one relay seen on the network.
type RelayEntry struct {
	Addr  string
	Arena string
}

// Browse waits up to timeout for the first relay to answer and returns it.
func Browse(ctx context.Context, timeout time.Duration) (RelayEntry, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan RelayEntry, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- RelayEntry{Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port), Arena: arenaFromTXT(e.InfoFields)}:
			default:
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	errc := make(chan error, 1)
	go func() {
		errc <- mdns.Query(params)
		close(entries)
	}()

	select {
	case r := <-found:
		return r, nil
	case <-ctx.Done():
		return RelayEntry{}, ctx.Err()
	case err := <-errc:
		if err != nil {
			return RelayEntry{}, fmt.Errorf("mdns query: %w", err)
		}
		<-drained
		select {
		case r := <-found:
			return r, nil
		default:
			return RelayEntry{}, ErrNoRelay
		}
	}
}

func arenaFromTXT(fields []string) string {
	for _, f := range fields {
		if code, ok := strings.CutPrefix(f, "arena="); ok {
			return code
		}
	}
	return ""
}
