package server

import (
	"fmt"
	"net"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCode renders text as a terminal QR code, two modules per character row
// using half blocks.
func QRCode(text string) (string, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("generating qr code: %w", err)
	}

	matrix := qr.Bitmap()
	var b strings.Builder
	for y := 0; y < len(matrix); y += 2 {
		for x := range matrix[y] {
			top := matrix[y][x]
			bottom := y+1 < len(matrix) && matrix[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune(' ')
			case top:
				b.WriteRune('▄')
			case bottom:
				b.WriteRune('▀')
			default:
				b.WriteRune('█')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// LANAddress returns the first non-loopback IPv4 address, or "localhost".
func LANAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
