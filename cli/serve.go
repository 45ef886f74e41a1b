package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/lantern-study/lantern/api"
	"github.com/lantern-study/lantern/config"
	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/workers/prewarm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer() error {
	cfg := config.Get()
	a := newApp()

	// Gin's default debug logging is replaced with the zerolog request logger
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinLogger())
	r.Use(api.RequestID())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	if cfg.IsDevelopment() {
		r.Use(corsMiddleware())
	}

	r.SetTrustedProxies(nil)

	api.SetupRoutes(r, &api.Handlers{
		Store:      a.Store,
		Cache:      a.Cache,
		Dispatcher: a.Dispatcher,
		Engine:     a.Engine,
		Merger:     a.Merger,
	})

	// Background cache warming for newly added documents
	worker := prewarm.NewWorker(cfg.LecturesDir(), a.Dispatcher)
	if err := worker.Start(); err != nil {
		log.Warn().Err(err).Msg("prewarm worker failed to start")
		worker = nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("env", cfg.Env).
			Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	if worker != nil {
		worker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
