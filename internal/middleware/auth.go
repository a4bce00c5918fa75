package middleware

import (
	"context"
	"net/http"

	"mockmate/interviewer/internal/models"
	"mockmate/interviewer/internal/utils"
)

const authClaimsKey contextKey = "auth_claims"

// RequireAuth validates the Bearer token on protected routes. Claims are
// stored in the request context for handlers that need the caller identity.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := utils.ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "missing_token",
					Message: err.Error(),
				})
				return
			}

			claims, err := utils.ValidateToken(token, secret)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "invalid_token",
					Message: "Invalid or expired token",
				})
				return
			}

			ctx := context.WithValue(r.Context(), authClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuthClaims retrieves validated claims from the request context, if any.
func GetAuthClaims(r *http.Request) (*utils.SessionTokenClaims, bool) {
	claims, ok := r.Context().Value(authClaimsKey).(*utils.SessionTokenClaims)
	return claims, ok
}
