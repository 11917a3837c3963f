package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ConfirmationInput is the input for the confirmation workflow.
type ConfirmationInput struct {
	ReservationID string
	CustomerEmail string
	CustomerName  string
}

// ConfirmationWorkflow orchestrates sending the reservation confirmation
// email and recording the outcome. If the email cannot be delivered after
// retries, the reservation is flagged so an admin can follow up manually
// (saga compensation).
func ConfirmationWorkflow(ctx workflow.Context, input ConfirmationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting confirmation workflow", "reservationID", input.ReservationID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Render the confirmation email from the stored reservation
	var body string
	err := workflow.ExecuteActivity(ctx, "RenderConfirmationEmail", input.ReservationID).Get(ctx, &body)
	if err != nil {
		return err
	}

	// Step 2: Send it
	err = workflow.ExecuteActivity(ctx, "SendConfirmationEmail", input.CustomerEmail, input.CustomerName, body).Get(ctx, nil)
	if err != nil {
		logger.Warn("confirmation email failed, compensating", "error", err)
		// Compensate: flag the reservation for manual follow-up
		_ = workflow.ExecuteActivity(ctx, "MarkEmailFailed", input.ReservationID).Get(ctx, nil)
		return err
	}

	// Step 3: Record the delivery in the audit trail
	_ = workflow.ExecuteActivity(ctx, "RecordEmailSent", input.ReservationID).Get(ctx, nil)

	logger.Info("Confirmation email sent", "reservationID", input.ReservationID)
	return nil
}
