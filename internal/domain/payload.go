package domain

import (
	"strconv"
	"strings"
)

// MaxPayloadLen caps how many bytes of an inbound radio message are kept.
const MaxPayloadLen = 16

// ReceivedPayload is an inbound radio message staged for the display loop.
type ReceivedPayload struct {
	From MAC
	Data [MaxPayloadLen]byte
	Len  int
}

// NewReceivedPayload copies at most MaxPayloadLen bytes of data.
func NewReceivedPayload(from MAC, data []byte) *ReceivedPayload {
	p := &ReceivedPayload{From: from}
	p.Len = copy(p.Data[:], data)
	return p
}

// Bytes returns the stored portion of the payload.
func (p *ReceivedPayload) Bytes() []byte {
	return p.Data[:p.Len]
}

// Decimal renders each byte as decimal digits, concatenated without separators.
func (p *ReceivedPayload) Decimal() string {
	var b strings.Builder
	for _, v := range p.Bytes() {
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}
