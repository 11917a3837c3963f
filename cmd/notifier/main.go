package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/nmoreno/fiestero/internal/adapters/email"
	natsadapter "github.com/nmoreno/fiestero/internal/adapters/nats"
	"github.com/nmoreno/fiestero/internal/adapters/postgres"
	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/pkg/config"
	"github.com/nmoreno/fiestero/internal/pkg/logging"
	"github.com/nmoreno/fiestero/internal/workflows"
)

// The notifier bridges reservation events to Temporal: every reservation
// published on NATS starts a ConfirmationWorkflow, and the embedded worker
// executes its activities (render, send, audit, compensate).
func main() {
	cfg, err := config.Load("fiestero-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ConfirmationWorkflow)
	w.RegisterActivity(&workflows.ConfirmationActivities{
		Reservations: postgres.NewReservationRepo(db),
		Audit:        postgres.NewAuditRepo(db),
		Mailer:       email.NewResendMailer(cfg.Email.APIKey, cfg.Email.From),
	})

	// Bridge NATS reservation events into workflow executions
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeReservationCreated(ctx, func(ctx context.Context, r *domain.Reservation) error {
		opts := client.StartWorkflowOptions{
			ID:        "confirmation-" + r.ID,
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		_, err := c.ExecuteWorkflow(ctx, opts, workflows.ConfirmationWorkflow, workflows.ConfirmationInput{
			ReservationID: r.ID,
			CustomerEmail: r.CustomerEmail,
			CustomerName:  r.CustomerName,
		})
		if err != nil {
			slog.Error("start confirmation workflow", "reservation_id", r.ID, "error", err)
			return err
		}
		slog.Info("confirmation workflow started", "reservation_id", r.ID)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	log.Println("notifier worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
