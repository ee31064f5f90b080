package middleware

import (
	"net/http"
	"strings"

	"famwish/internal/domain"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the upstream session/identity provider. This
// service trusts them; issuing and validating sessions is not its job.
const (
	HeaderUserID       = "X-User-ID"
	HeaderUserName     = "X-User-Name"
	HeaderCapabilities = "X-User-Capabilities"
)

const bidderContextKey = "bidder"

// RequireIdentity resolves the authenticated identity from the request
// headers and stores it on the echo context. Requests without an identity
// are rejected before reaching the handler.
func RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(HeaderUserID)
		if userID == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		}

		bidder := domain.Bidder{
			ID:          userID,
			DisplayName: c.Request().Header.Get(HeaderUserName),
		}
		if caps := c.Request().Header.Get(HeaderCapabilities); caps != "" {
			bidder.Capabilities = strings.Split(caps, ",")
		}

		c.Set(bidderContextKey, bidder)
		return next(c)
	}
}

// BidderFromContext returns the identity stored by RequireIdentity.
func BidderFromContext(c echo.Context) (domain.Bidder, bool) {
	bidder, ok := c.Get(bidderContextKey).(domain.Bidder)
	return bidder, ok
}
