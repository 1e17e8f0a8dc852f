package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceiptCode(t *testing.T) {
	code := NewReceiptCode("txn")
	require.True(t, strings.HasPrefix(code, "txn_"))
	assert.Len(t, code, len("txn_")+26) // ULID is 26 chars

	// Codes generated back to back must be unique.
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		c := NewReceiptCode("txn")
		require.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
}

func TestNewDepositAddress(t *testing.T) {
	addr := NewDepositAddress("1")
	require.True(t, strings.HasPrefix(addr, "1"))
	assert.Len(t, addr, 34)

	// Only base58-style characters after the prefix.
	for _, r := range addr[1:] {
		assert.Contains(t, addressAlphabet, string(r))
	}

	assert.NotEqual(t, NewDepositAddress("bc1"), NewDepositAddress("bc1"))
}
