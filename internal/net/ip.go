package net

import (
	"fmt"
	"net"

	"LocalBoard/internal/logging"
)

// probeAddr is never contacted; dialing UDP only selects the outgoing route.
const probeAddr = "8.8.8.8:80"

// GetOutgoingIP returns the address peers on the LAN should use to reach
// this host. Without a default route it falls back to the first interface
// address, then to loopback.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", probeAddr)
	if err != nil {
		logging.Logger().Debug("[NET] no default route, scanning interfaces", "error", err)
		ip := firstIPv4()
		if ip.IsLoopback() {
			logging.Logger().Warn("[NET] no suitable local IP found, share link may not work")
		}
		return ip.String(), nil
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}

// firstIPv4 returns the first IPv4 address of an up, non-loopback
// interface, or 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPv4(127, 0, 0, 1)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}
