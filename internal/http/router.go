package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/crypto-tracker/internal/httpui"
)

type RouterConfig struct {
	// Extra origins allowed to call the API with credentials, e.g. the
	// Farcaster client hosting the mini app.
	AllowOrigins []string
	Sessions     *SessionIssuer
}

func NewRouter(h *Handler, cfg RouterConfig) (*gin.Engine, error) {
	static, err := httpui.StaticHandler()
	if err != nil {
		return nil, err
	}

	r := gin.Default()

	origins := normalizeOrigins(cfg.AllowOrigins)
	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.GET("/.well-known/farcaster.json", h.Manifest)
	r.GET("/static/*filepath", gin.WrapH(http.StripPrefix("/static/", static)))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/stats", h.Stats)
	}

	session := SessionMiddleware(h.sessions, cfg.Sessions)

	r.GET("/", session, h.Page)

	sess := api.Group("", session)
	{
		sess.GET("/state", h.State)

		sess.GET("/coins", h.Coins)
		sess.GET("/coins/:id", h.Coin)
		sess.POST("/coins/refresh", h.RefreshCoins)
		sess.POST("/search", h.Search)

		sess.GET("/wallet", h.Wallet)
		sess.POST("/wallet/connect", h.ConnectWallet)
		sess.POST("/wallet/disconnect", h.DisconnectWallet)

		sess.POST("/view", h.SelectView)
		sess.GET("/portfolio", h.Portfolio)

		sess.GET("/ws", h.Stream(newUpgrader(origins)))
	}

	return r, nil
}

func originHost(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return ""
	}
	return u.Host
}
