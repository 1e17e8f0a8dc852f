package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDefaultTransferFeeRule(t *testing.T) {
	rule := DefaultTransferFeeRule()

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"one unit pays the rate", "1", "0.005"},
		{"large amount scales", "10", "0.05"},
		{"small amount hits the floor", "0.001", "0.0001"},
		{"floor boundary", "0.02", "0.0001"},
		{"just above the floor", "0.021", "0.000105"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Fee(d(tt.amount))
			assert.True(t, got.Equal(d(tt.want)), "fee(%s) = %s, want %s", tt.amount, got, tt.want)
		})
	}
}

func TestTransferFeeRuleFixedAndCap(t *testing.T) {
	maxFee := d("0.01")
	fixed := &TransferFeeRule{FeeType: FeeTypeFixed, Fixed: d("0.002"), MinFee: d("0.0001")}
	assert.True(t, fixed.Fee(d("100")).Equal(d("0.002")))

	capped := &TransferFeeRule{FeeType: FeeTypePercentage, Rate: d("0.005"), MinFee: d("0.0001"), MaxFee: &maxFee}
	assert.True(t, capped.Fee(d("100")).Equal(d("0.01")))
}

func TestPreviewTotal(t *testing.T) {
	p := DefaultTransferFeeRule().Preview(d("1"))
	require.True(t, p.Fee.Equal(d("0.005")))
	assert.True(t, p.Total.Equal(d("1.005")))
}
