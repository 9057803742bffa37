package http

import (
	"bytes"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/crypto-tracker/internal/dashboard"
	"github.com/quantumauth-io/crypto-tracker/internal/httpui"
	"github.com/quantumauth-io/crypto-tracker/internal/wallet"
)

type Handler struct {
	sessions SessionStore
	miniApp  httpui.MiniApp
}

func NewHandler(sessions SessionStore, miniApp httpui.MiniApp) *Handler {
	return &Handler{sessions: sessions, miniApp: miniApp}
}

// -------- DTOs --------

type searchReq struct {
	Query string `json:"query"`
}

type viewReq struct {
	View string `json:"view" binding:"required"`
}

func coinsJSON(st dashboard.State) gin.H {
	return gin.H{JSONKeyCoins: st.Filtered, JSONKeyLoading: st.Loading, JSONKeyQuery: st.Query}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/stats
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Stats())
}

// GET /.well-known/farcaster.json
func (h *Handler) Manifest(c *gin.Context) {
	c.JSON(http.StatusOK, h.miniApp.Manifest())
}

// GET /
//
// Query parameters are applied to the session before rendering so the page
// works without script: q searches, coin opens the modal, close shuts it and
// view switches between market and portfolio.
func (h *Handler) Page(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	if q, ok := c.GetQuery(QueryParamSearch); ok {
		app.Search(q)
	}
	if id := c.Query(QueryParamCoin); id != "" {
		app.SelectCoin(id)
	}
	if _, ok := c.GetQuery(QueryParamClose); ok {
		app.CloseModal()
	}
	if v := c.Query(QueryParamView); v != "" {
		if view, ok := parseView(v); ok {
			app.SelectView(view)
		}
	}

	var buf bytes.Buffer
	if err := httpui.Render(&buf, app.State(), h.miniApp); err != nil {
		log.Error("render failed", "session", app.ID(), "error", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GET /api/state
func (h *Handler) State(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app.State())
}

// GET /api/coins?q=
func (h *Handler) Coins(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	st := app.State()
	if q, ok := c.GetQuery(QueryParamSearch); ok {
		st = app.Search(q)
	}
	c.JSON(http.StatusOK, coinsJSON(st))
}

// GET /api/coins/:id
func (h *Handler) Coin(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	id := c.Param("id")
	st := app.SelectCoin(id)
	if st.Selected == nil || st.Selected.ID != id {
		writeError(c, http.StatusNotFound, CoinNotFoundText)
		return
	}
	c.JSON(http.StatusOK, st.Selected)
}

// POST /api/coins/refresh
func (h *Handler) RefreshCoins(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}
	c.JSON(http.StatusAccepted, app.Refresh())
}

// POST /api/search
func (h *Handler) Search(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, HTTPErrorInvalidJSONText)
		return
	}
	st := app.Search(req.Query)
	c.JSON(http.StatusOK, coinsJSON(st))
}

// GET /api/wallet
func (h *Handler) Wallet(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app.Wallet())
}

// POST /api/wallet/connect
func (h *Handler) ConnectWallet(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	var req wallet.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, HTTPErrorInvalidJSONText)
		return
	}

	st, err := app.Connect(c.Request.Context(), req)
	if err != nil {
		status, msg := http.StatusBadRequest, st.Wallet.Error
		if errors.Is(err, wallet.ErrConnectInProgress) {
			status, msg = http.StatusConflict, wallet.ErrConnectInProgress.Error()
		}
		if msg == "" {
			msg = WalletConnectFailedText
		}
		c.JSON(status, gin.H{JSONKeyError: msg, JSONKeyWallet: st.Wallet})
		return
	}
	c.JSON(http.StatusOK, st)
}

// POST /api/wallet/disconnect
func (h *Handler) DisconnectWallet(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app.Disconnect())
}

// POST /api/view
func (h *Handler) SelectView(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	var req viewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, HTTPErrorInvalidViewText)
		return
	}
	view, ok := parseView(req.View)
	if !ok {
		writeError(c, http.StatusBadRequest, HTTPErrorInvalidViewText)
		return
	}
	if view == dashboard.ViewPortfolio && !app.State().PortfolioAvailable() {
		writeError(c, http.StatusConflict, WalletRequiredText)
		return
	}
	c.JSON(http.StatusOK, app.SelectView(view))
}

// GET /api/portfolio
func (h *Handler) Portfolio(c *gin.Context) {
	app, ok := requireApp(c)
	if !ok {
		return
	}

	st := app.State()
	if !st.PortfolioAvailable() {
		writeError(c, http.StatusConflict, WalletRequiredText)
		return
	}
	c.JSON(http.StatusOK, st.Portfolio)
}
