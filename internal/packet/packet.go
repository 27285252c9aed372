package packet

import "strings"

// Packet is an ordered sequence of text lines travelling through the
// filter chain. Line 0 is always the command marker, further lines are
// headers and payload.
//
// A Packet is a value. Editing functions return a fresh Packet and leave
// the receiver untouched, so a packet held by one filter can never be
// changed behind its back by another.
type Packet struct {
	lines []string
}

// New builds a packet from the given lines.
func New(lines ...string) Packet {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return Packet{lines: cp}
}

// Command returns line 0, the command marker of the packet.
func (p Packet) Command() string {
	if len(p.lines) == 0 {
		return ""
	}
	return p.lines[0]
}

// Len returns the number of lines in the packet.
func (p Packet) Len() int {
	return len(p.lines)
}

// Line returns line i. The index must be within bounds.
func (p Packet) Line(i int) string {
	return p.lines[i]
}

// Lines returns a copy of all lines of the packet.
func (p Packet) Lines() []string {
	cp := make([]string, len(p.lines))
	copy(cp, p.lines)
	return cp
}

// WithLineAt returns a new packet with line inserted at index i, pushing
// the lines from i onwards one position down. i must be within
// [0, p.Len()].
func (p Packet) WithLineAt(i int, line string) Packet {
	cp := make([]string, 0, len(p.lines)+1)
	cp = append(cp, p.lines[:i]...)
	cp = append(cp, line)
	cp = append(cp, p.lines[i:]...)
	return Packet{lines: cp}
}

// WithoutLineAt returns a new packet with line i removed. i must be
// within [0, p.Len()).
func (p Packet) WithoutLineAt(i int) Packet {
	cp := make([]string, 0, len(p.lines)-1)
	cp = append(cp, p.lines[:i]...)
	cp = append(cp, p.lines[i+1:]...)
	return Packet{lines: cp}
}

// String renders the packet for logging.
func (p Packet) String() string {
	return strings.Join(p.lines, " | ")
}

// ParseHeader splits a header line of the form "key: value" at the first
// colon. The value is trimmed of surrounding whitespace. ok is false if
// the line contains no colon.
func ParseHeader(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}
