package api

import (
	"net/http"
	"time"

	_ "github.com/AlexZinkM/wallet-consolidator/docs" // swagger spec registration
	"github.com/AlexZinkM/wallet-consolidator/internal/handler"

	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.SolanaHandler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Session
	mux.HandleFunc("POST /session/unlock", h.Unlock)
	mux.HandleFunc("POST /session/lock", h.Lock)

	// Wallets
	mux.HandleFunc("GET /wallets", h.ListWallets)
	mux.HandleFunc("POST /wallets", h.Generate)
	mux.HandleFunc("POST /wallets/import", h.Import)
	mux.HandleFunc("PATCH /wallets/{id}", h.Rename)
	mux.HandleFunc("DELETE /wallets/{id}", h.Delete)
	mux.HandleFunc("GET /wallets/{id}/balance", h.GetBalance)

	// Migration
	mux.HandleFunc("POST /migrate/single", h.MigrateSingle)
	mux.HandleFunc("POST /migrate/multi", h.MigrateMulti)

	return requestLogger(log, mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs method, path, status and latency. Bodies are never
// logged since they may carry passwords or secret keys.
func requestLogger(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Msg("http request")
	})
}
