package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
	"github.com/nmoreno/fiestero/internal/pkg/metrics"
)

// ConfirmationActivities holds the activity implementations for the
// confirmation workflow.
type ConfirmationActivities struct {
	Reservations ports.ReservationRepository
	Audit        ports.AuditLogRepository
	Mailer       ports.Mailer
}

// RenderConfirmationEmail loads the reservation and renders the email body.
func (a *ConfirmationActivities) RenderConfirmationEmail(ctx context.Context, reservationID string) (string, error) {
	res, err := a.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return "", fmt.Errorf("load reservation %s: %w", reservationID, err)
	}

	body := fmt.Sprintf(
		"<h1>¡Reserva confirmada!</h1>"+
			"<p>Hola %s, tu reserva para el %s está confirmada.</p>"+
			"<p>Dirección de entrega: %s %s</p>",
		res.CustomerName,
		res.EventDate.Format("02/01/2006"),
		res.Address.Street, res.Address.HouseNumber,
	)
	body += "<ul>"
	for _, line := range res.Lines {
		body += fmt.Sprintf("<li>%d × %s — %s</li>", line.Quantity, line.ProductName, line.LineTotal)
	}
	body += fmt.Sprintf("</ul><p>Transporte: %s</p><p><strong>Total: %s</strong></p>",
		res.TransportCost, res.Total)

	return body, nil
}

// SendConfirmationEmail delivers the rendered email to the customer.
func (a *ConfirmationActivities) SendConfirmationEmail(ctx context.Context, to, name, body string) error {
	if a.Mailer == nil {
		log.Printf("EMAIL (no mailer) → to=%s name=%s", to, name)
		return nil
	}
	if err := a.Mailer.Send(ctx, to, "Tu reserva está confirmada", body); err != nil {
		metrics.ConfirmationEmailsSent.WithLabelValues("error").Inc()
		return err
	}
	metrics.ConfirmationEmailsSent.WithLabelValues("ok").Inc()
	return nil
}

// RecordEmailSent appends an audit entry for the delivered email.
func (a *ConfirmationActivities) RecordEmailSent(ctx context.Context, reservationID string) error {
	if a.Audit == nil {
		return nil
	}
	details, _ := json.Marshal(map[string]string{"email": "sent"})
	return a.Audit.Insert(ctx, &domain.AuditEntry{
		Actor:    "notifier",
		Action:   "reservation.email_sent",
		Entity:   "reservation",
		EntityID: reservationID,
		Details:  details,
	})
}

// MarkEmailFailed flags the reservation for manual follow-up (saga
// compensation / rollback).
func (a *ConfirmationActivities) MarkEmailFailed(ctx context.Context, reservationID string) error {
	if err := a.Reservations.UpdateStatus(ctx, reservationID, domain.ReservationEmailFailed); err != nil {
		return fmt.Errorf("mark reservation %s email_failed: %w", reservationID, err)
	}
	log.Printf("Reservation %s marked email_failed (saga compensation)", reservationID)
	return nil
}
