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
	"github.com/joho/godotenv"
	"github.com/listingshield/backend/internal/adminauth"
	"github.com/listingshield/backend/internal/config"
	"github.com/listingshield/backend/internal/database"
	"github.com/listingshield/backend/internal/logging"
	"github.com/listingshield/backend/internal/mailer"
	"github.com/listingshield/backend/internal/orders"
	"github.com/listingshield/backend/internal/payments"
	"github.com/listingshield/backend/internal/places"
	"github.com/listingshield/backend/internal/pricing"
	"github.com/listingshield/backend/internal/server"
	"github.com/listingshield/backend/internal/tracking"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "listingshield-api",
		Short: "ListingShield backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-dsn", "", "PostgreSQL DSN")
	cmd.PersistentFlags().String("environment", defaults.GetString("environment"), "Runtime environment (development, production)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.dsn", "database-dsn")
	bindFlag(cmd, "environment", "environment")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	// Secrets commonly live in a .env during local development.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.OpenPostgres(appConfig.DatabaseDSN, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	trackingService, err := tracking.NewService(tracking.ServiceConfig{
		Database: db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	pricingService, err := pricing.NewService(pricing.ServiceConfig{
		Database: db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	placesClient, err := places.NewClient(places.ClientConfig{
		APIKey:  appConfig.PlacesAPIKey,
		BaseURL: appConfig.PlacesBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	stripeClient, err := payments.NewStripeClient(payments.StripeClientConfig{
		SecretKey: appConfig.StripeSecretKey,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.ServiceConfig{
		Database:   db,
		Payments:   stripeClient,
		Pricing:    pricingService,
		Logger:     logger,
		Currency:   appConfig.Currency,
		SuccessURL: appConfig.CheckoutSuccessURL,
		CancelURL:  appConfig.CheckoutCancelURL,
	})
	if err != nil {
		return err
	}

	webhookHandler, err := payments.NewWebhookHandler(payments.WebhookHandlerConfig{
		Secret:   appConfig.StripeWebhookSecret,
		Orders:   orderService,
		Invoices: stripeClient,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	guard, err := adminauth.NewGuard(adminauth.GuardConfig{
		Email:        appConfig.AdminEmail,
		Password:     appConfig.AdminPassword,
		CookieName:   appConfig.AdminCookieName,
		SecureCookie: appConfig.IsProduction(),
	})
	if err != nil {
		return err
	}

	var contactMailer mailer.Sender
	if appConfig.SMTPHost != "" && appConfig.ContactInbox != "" {
		contactMailer, err = mailer.NewMailer(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUser,
			Password: appConfig.SMTPPassword,
			Inbox:    appConfig.ContactInbox,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Places:            placesClient,
		Tracking:          trackingService,
		Pricing:           pricingService,
		Orders:            orderService,
		Webhook:           webhookHandler,
		Guard:             guard,
		Mailer:            contactMailer,
		Logger:            logger,
		SessionCookieName: appConfig.SessionCookieName,
		SecureCookies:     appConfig.IsProduction(),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
