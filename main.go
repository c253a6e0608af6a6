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

	"github.com/spf13/pflag"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/db"
	"github.com/eventful-services/common/logger"
)

const shutdownTimeout = 10 * time.Second

// Local development server: every Lambda handler behind one mux.
func main() {
	var (
		configPath string
		port       int
	)
	flags := pflag.NewFlagSet("eventful", pflag.ExitOnError)
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file (default $CONFIG_FILE)")
	flags.IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := buildHandlers(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to start services: %v", err)
	}
	defer db.CloseDB()
	if cfg.Wallet.RPCURL == "" {
		logger.Warn("No wallet RPC URL configured, payments will fail with no connector")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(h, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printRoutes(cfg)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("Server shutdown failed")
	}
	logger.Info("Server stopped")
}

func printRoutes(cfg *config.AppConfig) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("Eventful running on %s\n", cfg.Server.BaseURL)
	fmt.Printf("========================================\n")
	fmt.Printf("\nStorefront:\n")
	fmt.Printf("  GET  /                          - Events, ticket selection, confirmation\n")
	fmt.Printf("  POST /checkout/{action}         - select, quantity, back, pay, restart\n")
	fmt.Printf("  GET  /api/checkout              - Checkout state\n")
	fmt.Printf("  POST /api/checkout/{action}     - Checkout actions (JSON)\n")
	fmt.Printf("\nCatalog:\n")
	fmt.Printf("  GET  /api/events                - Event list\n")
	fmt.Printf("  GET  /api/events/{id}           - Event detail\n")
	fmt.Printf("\nTickets:\n")
	fmt.Printf("  GET  /ticket-variants           - Ticket designs\n")
	fmt.Printf("  GET  /enhanced-tickets          - Ticket designs with QR code\n")
	fmt.Printf("  GET  /ticket                    - Printable ticket\n")
	fmt.Printf("  GET  /ticket/pdf                - Ticket PDF\n")
	fmt.Printf("\nWallet callback:\n")
	fmt.Printf("  POST %s\n", cfg.CallbackURL())
	fmt.Printf("\nHealth:\n")
	fmt.Printf("  GET  /health\n")
	fmt.Printf("========================================\n\n")
}
