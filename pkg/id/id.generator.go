package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewReceiptCode returns a prefixed, lexicographically sortable ULID,
// e.g. "txn_01J8ZK3V9W...".
func NewReceiptCode(prefix string) string {
	u := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + "_" + u.String()
}

const addressAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// NewDepositAddress generates a cosmetic receiving address for a wallet.
// It is a display-only mock identifier in a base58-looking shape; it is NOT
// derived from any key material and must never be treated as a chain address.
func NewDepositAddress(prefix string) string {
	b := make([]byte, 33)
	_, _ = rand.Read(b)
	out := make([]byte, len(b))
	for i := range b {
		out[i] = addressAlphabet[int(b[i])%len(addressAlphabet)]
	}
	return prefix + string(out)
}
