package authfilter

// AuthError reports a failed authentication check: a missing session,
// a wrong or absent auth header, or a write attempted to a connection
// that never completed the handshake. It is terminal for the packet;
// the layer above decides what happens to the connection.
type AuthError string

func (e AuthError) Error() string { return string(e) }

// ProtocolError reports a packet that does not conform to the expected
// line structure. It marks a contract violation by the transport side,
// not a normal authentication failure.
type ProtocolError string

func (e ProtocolError) Error() string { return string(e) }

// Constant errors.
// Rule of thumb, all errors start with a small letter and end with no full stop.
const (
	ErrNotAuthenticated  = AuthError("client is not authenticated")
	ErrMissingAuthHeader = AuthError("packet carries no auth-id header")
	ErrBadToken          = AuthError("auth-id header does not match the registered token")

	ErrShortPacket = ProtocolError("packet has no header line")
	ErrNoCommand   = ProtocolError("packet has no command line")
)
