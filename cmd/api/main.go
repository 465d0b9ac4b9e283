package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-verify-api/internal/config"
	"github.com/go-verify-api/internal/delivery"
	smtpinfra "github.com/go-verify-api/internal/infrastructure/smtp"
	snsinfra "github.com/go-verify-api/internal/infrastructure/sns"
	"github.com/go-verify-api/internal/otp"
	transporthttp "github.com/go-verify-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	if cfg.DebugEchoCode && cfg.AppEnv == "production" {
		log.Println("WARN: DEBUG_ECHO_CODE ignored in production")
	}

	// OTP store and background expiry sweeper.
	store := otp.NewStore(cfg.OTPMaxAttempts)
	sweeper := otp.NewSweeper(store, cfg.SweepInterval)
	sweeper.Start(context.Background())

	// Delivery channel: SMTP by default, SNS when configured.
	var channel delivery.Channel
	switch cfg.DeliveryChannel {
	case "sns":
		sender, err := snsinfra.NewSender(cfg)
		if err != nil {
			log.Fatalf("SNS sender not available: %v", err)
		}
		channel = sender
	default:
		channel = smtpinfra.NewMailer(cfg)
	}
	gateway := delivery.NewGateway(channel, cfg.DeliveryTimeout)

	deps := &transporthttp.Deps{
		Store:     store,
		Generator: otp.NewCodeGenerator(),
		Gateway:   gateway,
	}
	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, channel=%s)", cfg.AppPort, cfg.AppEnv, cfg.DeliveryChannel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	sweeper.Stop()
	log.Println("Server stopped")
}
