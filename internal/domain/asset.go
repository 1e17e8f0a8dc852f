package domain

import (
	"strings"

	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

// Asset describes a supported currency and its display metadata. The address
// prefix only shapes the cosmetic receiving address, nothing chain-related.
type Asset struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	AddressPrefix string `json:"-"`
	PriceFeedID   string `json:"-"` // id used by the market data collaborator
}

// AssetPrice is a point-in-time market quote, display-layer only.
type AssetPrice struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"change_24h"`
}

var SupportedAssets = []*Asset{
	{Symbol: "BTC", Name: "Bitcoin", Color: "#F7931A", AddressPrefix: "1", PriceFeedID: "bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", Color: "#627EEA", AddressPrefix: "0x", PriceFeedID: "ethereum"},
	{Symbol: "USDT", Name: "Tether", Color: "#26A17B", AddressPrefix: "T", PriceFeedID: "tether"},
	{Symbol: "SOL", Name: "Solana", Color: "#9945FF", AddressPrefix: "So", PriceFeedID: "solana"},
	{Symbol: "DOGE", Name: "Dogecoin", Color: "#C2A633", AddressPrefix: "D", PriceFeedID: "dogecoin"},
}

// LookupAsset resolves a symbol (case-insensitive) against the catalog.
func LookupAsset(symbol string) (*Asset, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range SupportedAssets {
		if a.Symbol == s {
			return a, nil
		}
	}
	return nil, xerrors.ErrAssetNotSupported
}
