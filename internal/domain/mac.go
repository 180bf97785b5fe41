package domain

import (
	"fmt"
	"net"
)

// MAC is a 6-byte radio peer address.
type MAC [6]byte

// DefaultPeerAddress is the receiver node's address.
var DefaultPeerAddress = MAC{0x24, 0xEC, 0x4A, 0x0E, 0xBC, 0x5C}

// ParseMAC parses a colon- or dash-separated 6-byte address.
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MAC{}, fmt.Errorf("parse mac %q: %w", s, err)
	}
	if len(hw) != 6 {
		return MAC{}, fmt.Errorf("parse mac %q: want 6 bytes, got %d", s, len(hw))
	}
	var m MAC
	copy(m[:], hw)
	return m, nil
}

func (m MAC) String() string {
	return net.HardwareAddr(m[:]).String()
}

// Hex returns the address as 12 lower-case hex digits without separators.
func (m MAC) Hex() string {
	return fmt.Sprintf("%x", m[:])
}
