package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/GradMERN/e-guide-Backend/internal/gateway"
	"github.com/GradMERN/e-guide-Backend/internal/repository"
	"github.com/GradMERN/e-guide-Backend/internal/service"
	httpx "github.com/GradMERN/e-guide-Backend/internal/transport/http"
	"github.com/GradMERN/e-guide-Backend/pkg/config"
	"github.com/GradMERN/e-guide-Backend/pkg/db"
	"github.com/GradMERN/e-guide-Backend/pkg/mq"
	"github.com/GradMERN/e-guide-Backend/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.Load())

	shutdown := obs.InitTracer("api")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.PGDSN)
	enrollments := repository.NewEnrollmentRepo(gdb)
	payments := repository.NewPaymentRepo(gdb)
	tours := repository.NewTourRepo(gdb)
	notifications := repository.NewNotificationRepo(gdb)
	must(0, enrollments.Migrate())
	must(0, tours.Migrate())
	must(0, notifications.Migrate())

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.EventsExchange))
	defer pub.Close()

	// nil gateway turns the platform into no-payment mode: enrollments are
	// granted active directly, with no ledger rows.
	var gw service.PaymentGateway
	if cfg.PaymentsEnabled && cfg.OmiseSecretKey != "" {
		gw = must(gateway.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.GatewayTimeout))
	} else {
		log.Println("[api] payments disabled; enrollments are free")
	}

	enrollSvc := service.NewEnrollmentSvc(enrollments, payments, tours, gw, pub, cfg.ReturnURL)
	reconcileSvc := service.NewReconcileSvc(payments, pub)
	accessSvc := service.NewAccessSvc(enrollments)
	tourSvc := service.NewTourSvc(tours, accessSvc)

	r := httpx.NewRouter(httpx.Handlers{
		Enrollments:   httpx.NewEnrollmentHandler(enrollSvc, payments),
		Tours:         httpx.NewTourHandler(tourSvc),
		Webhook:       httpx.NewWebhookHandler(cfg.WebhookSecret, reconcileSvc),
		Notifications: httpx.NewNotificationHandler(notifications),
	})

	log.Println("[api] listening on", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
