package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p usecase.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (usecase.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(usecase.Principal)
	return p, ok
}

// requirePrincipal is for handlers mounted behind RequireAuth.
func requirePrincipal(ctx context.Context) (usecase.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return usecase.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// bearerToken returns "" unless the header is "Bearer <token>".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
