package authfilter

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

// TokenSource produces fresh session tokens. Tests swap in a
// deterministic source.
type TokenSource func() string

// NewToken generates a session token by mixing the current wall-clock
// time in milliseconds with a value drawn from the system's
// cryptographically strong random source, rendered in base 10. The
// token is opaque and practically unique per issuance; it makes no
// stronger guarantee than that.
func NewToken() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	r := int64(binary.BigEndian.Uint64(buf[:]))
	millis := time.Now().UnixNano() / int64(time.Millisecond)
	return strconv.FormatInt(millis^r, 10)
}
