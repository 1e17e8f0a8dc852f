package domain

import (
	"github.com/shopspring/decimal"
)

const (
	FeeTypePercentage = "percentage"
	FeeTypeFixed      = "fixed"
)

// TransferFeeRule computes the fee charged on a transfer. Values are
// denominated in asset units, so the same floor applies to every asset.
type TransferFeeRule struct {
	FeeType string           `json:"fee_type"` // "percentage" or "fixed"
	Rate    decimal.Decimal  `json:"rate"`     // used when percentage
	Fixed   decimal.Decimal  `json:"fixed"`    // used when fixed
	MinFee  decimal.Decimal  `json:"min_fee"`  // lower bound
	MaxFee  *decimal.Decimal `json:"max_fee,omitempty"`
}

// DefaultTransferFeeRule is the platform default: 0.5% with a 0.0001 floor.
func DefaultTransferFeeRule() *TransferFeeRule {
	return &TransferFeeRule{
		FeeType: FeeTypePercentage,
		Rate:    decimal.RequireFromString("0.005"),
		MinFee:  decimal.RequireFromString("0.0001"),
	}
}

// Fee computes the fee for amount. Pure; no error conditions.
func (r *TransferFeeRule) Fee(amount decimal.Decimal) decimal.Decimal {
	var fee decimal.Decimal
	switch r.FeeType {
	case FeeTypeFixed:
		fee = r.Fixed
	default:
		fee = amount.Mul(r.Rate)
	}
	if fee.LessThan(r.MinFee) {
		fee = r.MinFee
	}
	if r.MaxFee != nil && fee.GreaterThan(*r.MaxFee) {
		fee = *r.MaxFee
	}
	return fee
}

// FeePreview is what the UI shows before submission.
type FeePreview struct {
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	Total  decimal.Decimal `json:"total"`
}

// Preview returns the fee and the total deduction for amount.
func (r *TransferFeeRule) Preview(amount decimal.Decimal) FeePreview {
	fee := r.Fee(amount)
	return FeePreview{Amount: amount, Fee: fee, Total: amount.Add(fee)}
}
