package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/crypto-tracker/internal/dashboard"
)

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{JSONKeyError: msg})
}

func requireApp(c *gin.Context) (*dashboard.App, bool) {
	app, ok := appFrom(c)
	if !ok {
		writeError(c, http.StatusInternalServerError, HTTPErrorNoSessionText)
		return nil, false
	}
	return app, true
}

func parseView(v string) (dashboard.View, bool) {
	switch dashboard.View(strings.ToLower(strings.TrimSpace(v))) {
	case dashboard.ViewMarket:
		return dashboard.ViewMarket, true
	case dashboard.ViewPortfolio:
		return dashboard.ViewPortfolio, true
	default:
		return "", false
	}
}

func normalizeOrigins(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		o := strings.TrimRight(strings.ToLower(strings.TrimSpace(s)), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
