package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/StatTag/StatWrap-sub000/api"
	"github.com/StatTag/StatWrap-sub000/internal/engine"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search service",
	Long: `Run the HTTP search service until interrupted.

With --projects the service starts an initialize job in the background;
otherwise it loads the existing index file, if any, and waits for
POST /initialize.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	projects, err := parseProjects(projectsArg)
	if err != nil {
		return err
	}

	svc, err := engine.New(cliSettings)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error("service_close_failed", "error", err.Error())
		}
	}()

	if len(projects) > 0 {
		jobID, err := svc.InitializeAsync(projects)
		if err != nil {
			return err
		}
		log.Info("initialize_started", "job_id", jobID, "projects", len(projects))
	} else if _, err := svc.Open(ctx); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cliSettings.Server.Addr
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server_listening", "addr", addr)
		cmd.Printf("Listening on %s\n", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("server_shutting_down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
