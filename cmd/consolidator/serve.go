package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/wallet-consolidator/internal/api"
	"github.com/AlexZinkM/wallet-consolidator/internal/handler"
	"github.com/AlexZinkM/wallet-consolidator/internal/session"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP API.",
		Long:  `Starts the HTTP API. The vault stays locked until POST /session/unlock.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("trailing args detected")
			}
			cmd.SilenceUsage = true

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sessions := session.NewManager(a.cfg.SessionTTL)
			defer sessions.Lock()

			h := handler.NewSolanaHandler(a.service, sessions, a.log.With().Str("component", "http").Logger())
			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           api.SetupRouter(h, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", srv.Addr).Msg("http server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
