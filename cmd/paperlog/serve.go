package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bobinette/paperlog/cron"
	"github.com/bobinette/paperlog/endpoints"
	"github.com/bobinette/paperlog/errors"
	paperhttp "github.com/bobinette/paperlog/http"
	"github.com/bobinette/paperlog/jwt"
	"github.com/bobinette/paperlog/library"
)

const shutdownTimeout = 5 * time.Second

func init() {
	RootCmd.AddCommand(&ServeCommand)
}

var ServeCommand = cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  "Start the web server, the live synchronization of the papers and the scheduled jobs",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var key []byte
		if cfg.Auth.Key != "" {
			var err error
			key, err = jwt.ReadKey(cfg.Auth.Key)
			if err != nil {
				return err
			}
		} else {
			logger.Print("no key configured, writes are not authenticated")
		}

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		controller := library.NewController(paperStore, logger.WithField("component", "library"), library.WithLocation(loc))
		ep := endpoints.NewPaperEndpoint(paperService, controller)

		srv := paperhttp.NewServer(env, logger.WithField("component", "http"))
		paperhttp.RegisterPaperEndpoints(srv, ep, key)
		paperhttp.NewStreamHandler(ep, controller, logger).Register(srv)
		paperhttp.NewPageHandler(ep, controller).Register(srv)

		server := &http.Server{
			Addr:    cfg.Addr,
			Handler: srv,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return ignoreCanceled(controller.Run(ctx))
		})
		g.Go(func() error {
			logger.Printf("server started, listening on %s", cfg.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.New("server stopped", errors.WithCause(err))
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
		if cfg.Cron.Enabled {
			jobs := cron.NewService(paperService, cron.Specs{
				Reindex:   cfg.Cron.Reindex,
				Citations: cfg.Cron.Citations,
			}, logger.WithField("component", "cron"))
			g.Go(func() error {
				return jobs.Run(ctx)
			})
		}

		err = g.Wait()
		logger.Print("server stopped")
		return err
	}),
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
