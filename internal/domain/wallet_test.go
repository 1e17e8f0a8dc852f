package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

func TestWalletDebit(t *testing.T) {
	w := &Wallet{Asset: "BTC", Balance: d("10")}

	require.NoError(t, w.Debit(d("1.005")))
	assert.True(t, w.Balance.Equal(d("8.995")))

	err := w.Debit(d("100"))
	assert.ErrorIs(t, err, xerrors.ErrInsufficientBalance)
	assert.True(t, w.Balance.Equal(d("8.995")), "failed debit must not touch the balance")

	assert.ErrorIs(t, w.Debit(d("0")), xerrors.ErrNonPositiveAmount)
	assert.ErrorIs(t, w.Debit(d("-1")), xerrors.ErrNonPositiveAmount)
}

func TestWalletCredit(t *testing.T) {
	w := &Wallet{Asset: "BTC", Balance: d("0")}

	require.NoError(t, w.Credit(d("1")))
	assert.True(t, w.Balance.Equal(d("1")))

	assert.ErrorIs(t, w.Credit(d("0")), xerrors.ErrNonPositiveAmount)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "abc@mail.com", NormalizeEmail("  Abc@Mail.COM "))
}

func TestIsPlausibleEmail(t *testing.T) {
	assert.True(t, IsPlausibleEmail("a@b"))
	assert.False(t, IsPlausibleEmail(""))
	assert.False(t, IsPlausibleEmail("no-at-sign"))
}

func TestLookupAsset(t *testing.T) {
	a, err := LookupAsset("btc")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", a.Name)

	_, err = LookupAsset("XYZ")
	assert.ErrorIs(t, err, xerrors.ErrAssetNotSupported)
}
