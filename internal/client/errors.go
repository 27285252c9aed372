package client

// Error provides constant error strings to the driver functions.
type Error string

func (e Error) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrNoSession       = Error("server sent traffic before any session was established")
	ErrBadHandshake    = Error("server handshake response is malformed")
	ErrBadServerHeader = Error("server packet carries a wrong or missing auth-id header")
	ErrEmptyPacket     = Error("packet has no command line")
)
