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

	"storefront/internal/catalog"
	intconfig "storefront/internal/config"
	"storefront/internal/fakestore"
	router "storefront/internal/http"
	"storefront/internal/http/handlers"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	env        intconfig.Env
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API: catalog listing, cart and pricing over a fakestore catalog",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		env, err = intconfig.LoadEnv(configPath)
		if err != nil {
			return err
		}
		logger, err := utils.NewLogger(env.LogLevel, env.GinMode)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		utils.SetLogger(logger)
		decimal.MarshalJSONWithoutQuotes = true
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = utils.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("STOREFRONT_CONFIG"), "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := utils.L()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	var kv repositories.KVStore = repositories.NewMemoryKV()
	if db != nil {
		repo := repositories.KVRepository{DB: db, Dialect: env.PersistenceDriver}
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("prepare kv schema: %w", err)
		}
		kv = repo
	}

	toasts := notify.NewHub(env.ToastDuration)
	defer toasts.Close()

	client := fakestore.New(env.UpstreamBaseURL, env.UpstreamTimeout)
	promos := pricing.NewPromoTable(env.Promos)
	sessions := services.NewSessionRegistry(kv, promos, env.TaxRate, env.Shipping)

	if env.ConfigPath != "" {
		watcher, err := intconfig.NewPromoWatcher(env.ConfigPath, sessions.SetPromos)
		if err != nil {
			log.Warn("promo hot reload disabled", zap.Error(err))
		} else {
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	hd := &handlers.Handler{
		Catalog: services.CatalogService{
			Source:   client,
			Cache:    catalog.NewCache(),
			PageSize: env.PageSize,
		},
		Sessions:  sessions,
		Upstream:  client,
		Toasts:    toasts,
		StoreName: "Storefront",
		Started:   time.Now(),
	}

	// warm the cache; listing retries on first request if this fails
	go func() {
		wctx, cancel := context.WithTimeout(ctx, env.UpstreamTimeout)
		defer cancel()
		_ = hd.Catalog.Refresh(wctx)
	}()

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(env, hd),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr), zap.String("upstream", client.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
