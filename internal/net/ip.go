package net

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// LinkScheme prefixes share links handed to the second player.
const LinkScheme = "lineduel://"

// OutgoingIP returns the address other machines on the LAN can reach us at.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		return conn.LocalAddr().(*net.UDPAddr).IP.String()
	}
	// No route to the internet; pick the first non-loopback IPv4 interface.
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	log.Warn().Str("component", "net").Msg("no LAN address found, share link uses loopback")
	return "127.0.0.1"
}

// ShareLink builds the link a second player opens to join arena.
func ShareLink(host string, port int, arena string) string {
	return fmt.Sprintf("%s%s:%d/%s", LinkScheme, host, port, url.PathEscape(arena))
}

// ParseLink splits a share link into relay address and arena code. The
// arena part is optional.
func ParseLink(link string) (addr, arena string, err error) {
	rest, ok := strings.CutPrefix(link, LinkScheme)
	if !ok {
		return "", "", fmt.Errorf("not a %s link: %q", LinkScheme, link)
	}
	rest = strings.TrimSuffix(rest, "/")
	addr, arena, _ = strings.Cut(rest, "/")
	if addr == "" {
		return "", "", fmt.Errorf("link %q has no relay address", link)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", "", fmt.Errorf("link %q: %w", link, err)
	}
	if arena, err = url.PathUnescape(arena); err != nil {
		return "", "", fmt.Errorf("link %q: %w", link, err)
	}
	return addr, arena, nil
}
