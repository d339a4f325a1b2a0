package middleware

import (
	"net/http"
	"strings"

	"homeport-backend/pkg/auth"
	"homeport-backend/pkg/common"

	"go.uber.org/zap"
)

// ClientIDHeader names the browser installation. Anonymous intake and the
// post-login reconciliation both key the draft reference by it.
const ClientIDHeader = "X-Client-ID"

// ClientID extracts the client id header into the request context. The
// header is optional; requests without it simply have no draft reference
// to consult.
func ClientID() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if clientID := strings.TrimSpace(r.Header.Get(ClientIDHeader)); clientID != "" {
				r = r.WithContext(common.WithClientID(r.Context(), clientID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP rejects clients exceeding the per-IP request budget.
// Anonymous intake traffic has no principal to key on, so the source
// address is the only handle.
func RateLimitByIP(requestsPerMinute int) func(next http.Handler) http.Handler {
	limiter := auth.NewIPRateLimiter(requestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, _ := limiter.Allow(r.Context(), clientIP(r))
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate validates the bearer token and loads the principal into the
// request context. Authenticated traffic is additionally rate limited per
// principal.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	principalLimiter := auth.NewPrincipalRateLimiter(200)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Missing or malformed authorization header")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Warn("Token validation failed",
					zap.Error(err),
					zap.String("ip", clientIP(r)),
					zap.String("path", r.URL.Path),
				)
				common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Invalid token")
				return
			}

			allowed, _ := principalLimiter.Allow(r.Context(), claims.Subject)
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
				return
			}

			ctx := common.WithPrincipalID(r.Context(), claims.Subject)
			ctx = common.WithEmailConfirmed(ctx, claims.EmailConfirmed)
			ctx = common.WithRole(ctx, claims.AppMetadata.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP resolves the originating address, preferring proxy headers
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
