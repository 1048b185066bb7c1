package statement

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

// statusFor maps import and reconciliation errors to HTTP statuses.
func statusFor(err error) int {
	var (
		perr *statement.ParseError
		cerr *reconcile.CollaboratorError
	)

	switch {
	case errors.Is(err, statement.ErrUnrecognizedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &perr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reconcile.ErrNotFound), errors.Is(err, reconcile.ErrNoActiveStatement):
		return http.StatusNotFound
	case errors.Is(err, reconcile.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &cerr):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("statement request failed", "status", status, "error", err)
	}

	http.Error(w, err.Error(), status)
}
