package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e := initMemory()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: statusMux(e),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down status server")
			_ = srv.Close()
		}()

		zap.L().Info("status server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve")
		}
		return nil
	},
}

func statusMux(e *env) *http.ServeMux {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			zap.L().Warn("serve: failed to encode response", zap.Error(err))
		}
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":    "ok",
			"companies": e.Companies.Count(),
			"signals":   e.History.Count(),
		})
	})

	mux.HandleFunc("GET /signals/recent", func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
				return
			}
			limit = n
		}
		writeJSON(w, e.History.GetRecent(limit))
	})

	mux.HandleFunc("GET /companies/top", func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
				return
			}
			limit = n
		}
		writeJSON(w, e.Companies.GetTopCompanies(limit))
	})

	mux.HandleFunc("GET /trends", func(w http.ResponseWriter, r *http.Request) {
		window := cfg.Memory.TrendWindowDays
		if q := r.URL.Query().Get("window"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				http.Error(w, `{"error":"invalid window"}`, http.StatusBadRequest)
				return
			}
			window = n
		}
		writeJSON(w, e.History.DetectTrends(window))
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
