// Package notify delivers guardian notifications for gate-pass decisions.
// Delivery is at most once: a failed send is logged and dropped, never
// retried, and never fails the review that triggered it.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ciet-hostel/gatepass-api/internal/models"
)

// GuardianNotification carries everything the SMS channel needs.
type GuardianNotification struct {
	PassID      string                `json:"pass_id"`
	StudentName string                `json:"student_name"`
	ParentPhone string                `json:"parent_phone"`
	Status      models.GatePassStatus `json:"status"`
	Destination string                `json:"destination"`
	DepartAt    time.Time             `json:"depart_at"`
	ReturnAt    time.Time             `json:"return_at"`
}

// GuardianNotifier is the outbound notification channel.
type GuardianNotifier interface {
	Notify(ctx context.Context, n GuardianNotification) error
}

// SMSLogNotifier is the stand-in SMS gateway: it logs the message that a real
// integration would send. Swapping in a provider only requires another
// GuardianNotifier implementation.
type SMSLogNotifier struct {
	logger   *zap.Logger
	senderID string
}

// NewSMSLogNotifier constructs the logging stub.
func NewSMSLogNotifier(logger *zap.Logger, senderID string) *SMSLogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSLogNotifier{logger: logger, senderID: senderID}
}

// Notify logs the SMS that would be sent to the guardian.
func (n *SMSLogNotifier) Notify(_ context.Context, msg GuardianNotification) error {
	n.logger.Info("guardian_sms",
		zap.String("sender", n.senderID),
		zap.String("to", msg.ParentPhone),
		zap.String("pass_id", msg.PassID),
		zap.String("student", msg.StudentName),
		zap.String("status", string(msg.Status)),
		zap.String("destination", msg.Destination),
		zap.Time("depart_at", msg.DepartAt),
		zap.Time("return_at", msg.ReturnAt),
	)
	return nil
}
