package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"farmacia/m/internal/api"
	"farmacia/m/internal/auth"
	"farmacia/m/internal/checkout"
	"farmacia/m/internal/config"
	"farmacia/m/internal/database"
	"farmacia/m/internal/invoice"
	"farmacia/m/internal/mail"
	"farmacia/m/internal/migrations"
	"farmacia/m/internal/notify"
	"farmacia/m/internal/payment"
	"farmacia/m/internal/seed"
	"farmacia/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)

	ctx := context.Background()
	st := store.New(db)
	seed.LoadProducts(ctx, st, cfg.CatalogCSV)

	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.EmailKey, cfg.EmailFrom)
	tokens := auth.NewTokens(cfg.Secret)

	hub := notify.NewHub(cfg.FrontendURL)
	sinks := notify.Multi{hub}
	if cfg.AMQPURL != "" {
		queue, err := notify.DialQueue(cfg.AMQPURL, cfg.SalesQueue)
		if err != nil {
			log.Printf("[notify] sales queue disabled: %v", err)
		} else {
			defer queue.Close()
			sinks = append(sinks, queue)
		}
	}

	engine := checkout.NewEngine(st, checkout.StockPolicy(cfg.StockPolicy), sinks)
	if cfg.StripeSecretKey != "" && cfg.WebBranchID <= 0 {
		log.Printf("[webhook] WEB_BRANCH_ID is not set, online payments require id_sucursal on every checkout")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Printf("[webhook] STRIPE_WEBHOOK_SECRET is empty, every delivery will be rejected")
	}

	handler := api.New(api.Deps{
		Store:    st,
		Tokens:   tokens,
		Auth:     auth.NewService(st, tokens, mailer, cfg.FrontendURL),
		Checkout: engine,
		Sessions: payment.NewSessions(engine, st, payment.NewStripeSessions(cfg.StripeSecretKey), payment.SessionConfig{
			Currency:     cfg.StripeCurrency,
			ExchangeRate: cfg.ExchangeRate,
			FrontendURL:  cfg.FrontendURL,
			AgentID:      cfg.WebAgentID,
			BranchID:     cfg.WebBranchID,
		}),
		Reconciler:  payment.NewReconciler(engine, cfg.StripeWebhookSecret, cfg.WebAgentID, cfg.WebBranchID),
		Invoices:    invoice.NewService(st, mailer),
		Hub:         hub,
		FrontendURL: cfg.FrontendURL,
	})

	log.Printf("Farmacia server starting on :%s (db=%s, stock policy=%s)", cfg.HTTPPort, cfg.DatabaseDriver, cfg.StockPolicy)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
