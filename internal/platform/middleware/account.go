package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/httputil"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// AccountResolver verifies a caller-supplied account identifier.
type AccountResolver interface {
	Resolve(ctx context.Context, raw string) (id.AccountID, error)
}

// RequireAccount resolves the caller's account and injects the verified id
// into the request context. The identifier comes from the X-Account-ID
// header, or from the account_id claim of a Bearer token signed with
// signingKey. Requests without a resolvable account are rejected with 401;
// there is no fallback account.
func RequireAccount(resolver AccountResolver, signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := r.Header.Get("X-Account-ID")
			if raw == "" {
				if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
					claim, err := accountClaim(bearer, signingKey)
					if err != nil {
						logger.WarnContext(ctx, "rejected bearer token",
							"error", err,
							"request_id", requestcontext.RequestID(ctx),
						)
						httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
						return
					}
					raw = claim
				}
			}

			accountID, err := resolver.Resolve(ctx, raw)
			if err != nil {
				logger.WarnContext(ctx, "account resolution failed",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithAccountID(ctx, accountID)))
		})
	}
}

func accountClaim(tokenString, signingKey string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	accountID, _ := claims["account_id"].(string)
	if accountID == "" {
		return "", fmt.Errorf("token missing account_id claim")
	}
	return accountID, nil
}
