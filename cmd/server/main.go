package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightpath/coaching-api/internal/api"
	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/contact"
	"github.com/brightpath/coaching-api/internal/content"
	"github.com/brightpath/coaching-api/internal/contentful"
	"github.com/brightpath/coaching-api/internal/mailer"
	"github.com/brightpath/coaching-api/internal/newsletter"
	"github.com/brightpath/coaching-api/internal/pkg/logger"
	"github.com/brightpath/coaching-api/internal/ratelimit"
	"github.com/brightpath/coaching-api/internal/registration"
	"github.com/brightpath/coaching-api/internal/stripe"
)

const configPath = "config/config.yaml"

func main() {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	contentClient, err := contentful.NewClient(cfg.Contentful)
	if err != nil {
		logger.Error("Failed to create content client", "error", err.Error())
		os.Exit(1)
	}

	mailClient, err := mailer.New(cfg.SMTP)
	if err != nil {
		logger.Error("Failed to create mailer", "error", err.Error())
		os.Exit(1)
	}

	// Payments are optional. Without a Stripe key every event is free.
	var stripeClient *stripe.Client
	if cfg.Stripe.Enabled {
		stripeClient, err = stripe.NewClient(cfg.Stripe)
		if err != nil {
			logger.Error("Failed to create payment client", "error", err.Error())
			os.Exit(1)
		}
	} else {
		logger.Warn("Payments disabled, paid registrations will be rejected")
	}

	repo := content.NewRepository(contentClient, cfg.Site.CompanyTTL(), cfg.Site.SliderTTL())

	regStore := registration.NewStore(contentClient)
	var payments registration.PaymentCreator
	if stripeClient != nil {
		payments = stripeClient
	}
	regWorkflow := registration.NewWorkflow(regStore, payments, mailClient, repo)

	subStore := newsletter.NewStore(contentClient)
	external := newsletter.NewExternalClient(cfg.Newsletter)
	var registrar newsletter.ExternalRegistrar
	if external != nil {
		registrar = external
	}
	subService := newsletter.NewService(subStore, registrar, mailClient, cfg.Site.BaseURL)

	contactService := contact.NewService(contentClient, mailClient)

	limiter := ratelimit.New(cfg.Redis)
	if limiter != nil {
		defer limiter.Close()
	} else {
		logger.Warn("Rate limiting disabled, no Redis address configured")
	}

	var webhooks api.WebhookVerifier
	if stripeClient != nil {
		webhooks = stripeClient
	}
	handlers := api.NewHandlers(contactService, subService, regWorkflow,
		repo, webhooks, limiter, cfg.Site.ThankYouPath)

	server := api.NewServer(cfg.Server, handlers, cfg.Site.AllowedOrigins)
	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Server exited", "error", err.Error())
		os.Exit(1)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped", "addr", addr)
}
