package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/treehousetherapy/curelia-health/v1/auth"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// AuthConfig configures the bearer-token authentication middleware.
type AuthConfig struct {
	Guard *auth.Guard
	// PublicPaths are served without a token (login, health, metrics).
	PublicPaths []string
}

// Validate checks that the configuration is usable.
func (c *AuthConfig) Validate() error {
	if c.Guard == nil {
		return errors.New("auth middleware requires a guard")
	}
	return nil
}

// AuthMiddleware extracts the bearer token, authenticates the actor
// through the guard and places the actor and session id on the request
// context. Error responses are deliberately generic so callers cannot
// distinguish unknown, locked or expired accounts.
func AuthMiddleware(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, config.PublicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractBearerToken(r)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			actor, sessionID, err := config.Guard.AuthenticateToken(r.Context(), token)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired credentials")
				return
			}

			ctx := utils.SetActor(r.Context(), actor)
			ctx = utils.SetSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken pulls the token out of the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

func isPublicPath(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
