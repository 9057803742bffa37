package http

import "time"

// Generic HTTP / JSON strings
const (
	HTTPErrorInvalidJSONText = "invalid JSON"
	HTTPErrorInvalidViewText = "view must be market or portfolio"
	HTTPErrorNoSessionText   = "session not initialised"
)

// Common JSON keys
const (
	JSONKeyError   = "error"
	JSONKeyCoins   = "coins"
	JSONKeyLoading = "loading"
	JSONKeyQuery   = "query"
	JSONKeyWallet  = "wallet"
)

// Dashboard messages
const (
	CoinNotFoundText        = "coin not found"
	WalletRequiredText      = "connect a wallet first"
	WalletConnectFailedText = "wallet connect failed"
)

// Page query parameters
const (
	QueryParamSearch = "q"
	QueryParamCoin   = "coin"
	QueryParamClose  = "close"
	QueryParamView   = "view"
)

// Session cookie
const (
	ctxKeyApp = "app"

	SessionTokenTTL     = 24 * time.Hour
	SessionRenewalAfter = SessionTokenTTL / 2
)

// WebSocket timings
const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 512
)
