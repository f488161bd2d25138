package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gardenaqua/gardenaqua-backend/api/responses"
	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

const operatorTokenHeader = "X-Operator-Token"

// OperatorToken gates the operator surface behind a shared deployment token.
// An unset token disables the surface entirely.
func OperatorToken(cfg config.OperatorConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operator access not configured"))
				return
			}
			provided := r.Header.Get(operatorTokenHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Token)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid operator token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
