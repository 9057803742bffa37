package constants

const (
	AppName = "crypto-tracker"

	// Base mainnet
	DefaultChainID = 8453

	VsCurrency = "usd"

	MarketsPerPage = 50

	DefaultPriceRefreshSeconds = 60

	SessionCookieName = "ct_session"
	SessionClaimID    = "sid"
)
