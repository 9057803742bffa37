package assets

import "github.com/ethereum/go-ethereum/common"

// Ether on Base.
var baseNative = NativeAsset{
	Symbol:   "ETH",
	Name:     "Ethereum",
	Decimals: 18,
	PriceID:  "ethereum",
	Icon:     "⟠",
}

func BaseNative() NativeAsset { return baseNative }

// BaseTokens is the fixed token list tracked on Base mainnet.
func BaseTokens() TokenList {
	return NewTokenList(
		TokenDescriptor{
			Address:  common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
			Symbol:   "USDC",
			Name:     "USD Coin",
			Decimals: 6,
			PriceID:  "usd-coin",
			Icon:     "💵",
		},
		TokenDescriptor{
			Address:  common.HexToAddress("0x4200000000000000000000000000000000000006"),
			Symbol:   "WETH",
			Name:     "Wrapped Ether",
			Decimals: 18,
			PriceID:  "weth",
			Icon:     "⟠",
		},
		TokenDescriptor{
			Address:  common.HexToAddress("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"),
			Symbol:   "DAI",
			Name:     "Dai Stablecoin",
			Decimals: 18,
			PriceID:  "dai",
			Icon:     "◈",
		},
	)
}
