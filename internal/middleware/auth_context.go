package middleware

import (
	"context"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/auth"
)

// DebugUserHeader solo se acepta sin verifier (modo dev).
const DebugUserHeader = "X-Debug-User-ID"

type claimsKey struct{}

// AuthContext deja los claims del caller en el contexto cuando los hay.
// No corta el request: cada handler responde 401 si necesita usuario.
//   - verifier == nil: modo dev, se confía en X-Debug-User-ID.
//   - verifier != nil: Authorization: Bearer <token> verificado contra el proveedor.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}

	resolve := func(r *http.Request) (auth.Claims, bool) {
		if verifier == nil {
			uid := strings.TrimSpace(r.Header.Get(DebugUserHeader))
			return auth.Claims{UserID: uid}, uid != ""
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			return auth.Claims{}, false
		}
		claims, err := verifier.Verify(r.Context(), token)
		if err != nil || strings.TrimSpace(claims.UserID) == "" {
			log.Debug("token rejected", map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"err":        err,
			})
			return auth.Claims{}, false
		}
		return claims, true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolve(r); ok {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return c, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
