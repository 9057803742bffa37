package http

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/crypto-tracker/internal/constants"
	"github.com/quantumauth-io/crypto-tracker/internal/dashboard"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionStore is satisfied by *dashboard.Registry.
type SessionStore interface {
	GetOrCreate(id string) (*dashboard.App, bool)
	Stats() dashboard.Stats
}

// SessionIssuer signs and verifies the session cookie. The cookie only
// carries the session id; all state lives server side.
type SessionIssuer struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func NewSessionIssuer(secret string, secure bool) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), secure: secure, now: time.Now}
}

func (s *SessionIssuer) Issue(sessionID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		constants.SessionClaimID: sessionID,
		"iat":                    now.Unix(),
		"exp":                    now.Add(SessionTokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return signed, nil
}

// Parse returns the session id and when the token was issued.
func (s *SessionIssuer) Parse(raw string) (string, time.Time, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", time.Time{}, errors.WithSecondaryError(ErrInvalidSessionToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, ErrInvalidSessionToken
	}
	sid, _ := claims[constants.SessionClaimID].(string)
	if sid == "" {
		return "", time.Time{}, ErrInvalidSessionToken
	}

	var issued time.Time
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		issued = iat.Time
	}
	return sid, issued, nil
}

func (s *SessionIssuer) setCookie(c *gin.Context, token string) {
	if s.secure {
		// Mini apps run inside a third-party iframe.
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(constants.SessionCookieName, token, int(SessionTokenTTL.Seconds()), "/", "", s.secure, true)
}

// SessionMiddleware attaches the caller's dashboard.App to the context,
// creating a session (and cookie) for new or invalid tokens.
func SessionMiddleware(store SessionStore, issuer *SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			sid    string
			issued time.Time
		)
		if raw, err := c.Cookie(constants.SessionCookieName); err == nil && raw != "" {
			sid, issued, err = issuer.Parse(raw)
			if err != nil {
				log.Warn("session cookie rejected", "error", err)
			}
		}

		app, created := store.GetOrCreate(sid)
		if created || issuer.now().Sub(issued) > SessionRenewalAfter {
			token, err := issuer.Issue(app.ID())
			if err != nil {
				log.Error("issuing session token failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{JSONKeyError: HTTPErrorNoSessionText})
				return
			}
			issuer.setCookie(c, token)
		}

		c.Set(ctxKeyApp, app)
		c.Next()
	}
}

func appFrom(c *gin.Context) (*dashboard.App, bool) {
	v, ok := c.Get(ctxKeyApp)
	if !ok {
		return nil, false
	}
	app, ok := v.(*dashboard.App)
	return app, ok && app != nil
}
