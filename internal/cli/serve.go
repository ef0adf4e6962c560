package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mithrel/oceannotes/internal/eventloop"
	"github.com/mithrel/oceannotes/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes API and live preview over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr := app.Cfg.GetString("http_addr")
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			loop := eventloop.New(0)
			srv := server.New(app.Store, loop,
				server.WithLogger(app.Log.Named("http")),
				server.WithRenderer(app.Renderer()),
				server.WithAutosave(app.AutosaveOptions()...),
			)
			httpSrv := &http.Server{Handler: srv.Router(), ReadHeaderTimeout: 10 * time.Second}

			loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
			defer stopLoop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				err := loop.Run(loopCtx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			g.Go(func() error {
				app.Log.Info("listening", zap.String("addr", ln.Addr().String()))
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "HTTP server listening on %s\n", ln.Addr())
				if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err := httpSrv.Shutdown(shutdownCtx)
				// sessions close on the loop before it stops
				_ = srv.Shutdown(shutdownCtx)
				stopLoop()
				return err
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("http_addr", "", "listen address (overrides config http_addr)")
	return cmd
}
