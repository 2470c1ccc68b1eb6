package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/jusunglee/transit-go/api/handlers"
	"github.com/jusunglee/transit-go/pkg/transit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("transit-server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		staticRoot      string
		feedBaseURL     string
		bindAddr        string
		refreshInterval time.Duration
		tz              string
	)

	cmd := &cobra.Command{
		Use:   "transit-server",
		Short: "Serves the unified LIRR/MNR/Subway station, departure and alert query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("loading time zone %q: %w", tz, err)
			}

			svc, err := transit.NewService(transit.Config{
				StaticRoot:      staticRoot,
				FeedBaseURL:     feedBaseURL,
				RefreshInterval: refreshInterval,
				Location:        loc,
			})
			if err != nil {
				return fmt.Errorf("building transit service: %w", err)
			}
			svc.Start()
			defer svc.Stop()

			r := mux.NewRouter()
			handlers.NewHandler(svc).RegisterRoutes(r)
			r.Use(loggingMiddleware)
			r.Use(corsMiddleware)

			srv := &http.Server{
				Addr:         bindAddr,
				Handler:      r,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				slog.Info("transit-server starting", slog.String("addr", bindAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("server failed to start", slog.Any("err", err))
					os.Exit(1)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			slog.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&staticRoot, "static-root", envOr("STATIC_ROOT", "data/gtfs"), "root directory of the per-system GTFS static corpus")
	cmd.Flags().StringVar(&feedBaseURL, "feed-base-url", envOr("FEED_BASE_URL", ""), "base URL for GTFS-Realtime trip-update and alert feeds")
	cmd.Flags().StringVar(&bindAddr, "bind-addr", envOr("BIND_ADDR", ":8080"), "address the HTTP server listens on")
	cmd.Flags().DurationVar(&refreshInterval, "refresh-interval", envDurationOr("REFRESH_INTERVAL", 5*time.Minute), "how often the static index is reloaded")
	cmd.Flags().StringVar(&tz, "tz", envOr("TZ", "America/New_York"), "operational time zone for schedule resolution")

	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Duration("duration", time.Since(start)))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
