package packet

import (
	"bufio"
	"strings"
)

// The wire form of a packet is its lines, each terminated by a newline,
// followed by one empty line closing the packet.

// Read consumes one packet from r. It reads lines until the empty
// terminator line. An EOF before any line was read is returned as-is so
// callers can tell a closed connection from a broken packet.
func Read(r *bufio.Reader) (Packet, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return Packet{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return Packet{}, ErrEmptyPacket
	}
	return Packet{lines: lines}, nil
}

// Bytes renders the packet in wire form, including the empty
// terminator line.
func (p Packet) Bytes() []byte {
	var b strings.Builder
	for _, line := range p.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
