package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/scorekeeper/internal/api/apierr"
	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/middleware"
)

// Recovery turns handler panics into a JSON 500 and counts them.
// recorder may be nil.
func Recovery(logger *slog.Logger, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		recorder.RecordPanic()
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
