// Package privacy masks client identifiers before they reach logs.
package privacy

import (
	"net"
	"net/netip"
)

// AnonymizeIP keeps the /24 of an IPv4 address or the /48 of an IPv6
// address. It accepts "host:port" as found in http.Request.RemoteAddr.
func AnonymizeIP(addr string) string {
	if addr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return "invalid"
	}
	ip = ip.Unmap()
	bits := 48
	if ip.Is4() {
		bits = 24
	}
	prefix, err := ip.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
