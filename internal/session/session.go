package session

import (
	"github.com/SystemBuilders/LineAuth/internal/filterchain"
)

// Table describes the session table of the authentication filter: a
// concurrent mapping from connection identity to session token. The
// presence of an entry means the connection is authenticated.
//
// Handlers for different connections call into the table concurrently;
// implementations must synchronize internally. Operations on the same
// connection are linearizable with respect to each other.
type Table interface {
	// Put registers or replaces the token for a connection.
	Put(conn filterchain.ConnID, token string)
	// Get looks up the token registered for a connection.
	Get(conn filterchain.ConnID) (string, bool)
	// Remove deletes the entry for a connection. Removing a connection
	// that has no entry is not an error.
	Remove(conn filterchain.ConnID)
	// Len returns the number of authenticated connections.
	Len() int
	// Connections returns the identities of all authenticated
	// connections. Token values never leave the table wholesale.
	Connections() []filterchain.ConnID
}
