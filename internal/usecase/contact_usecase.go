package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/validation"
)

type ContactMetrics interface {
	ContactSubmitted(outcome string)
}

type nopContactMetrics struct{}

func (nopContactMetrics) ContactSubmitted(string) {}

type ContactUsecase struct {
	sender    email.EmailSender
	validator *validation.Validator
	inbox     string
	metrics   ContactMetrics
	logger    logger.Logger
	now       func() time.Time
}

func NewContactUsecase(sender email.EmailSender, v *validation.Validator, inbox string, metrics ContactMetrics, log logger.Logger) *ContactUsecase {
	if metrics == nil {
		metrics = nopContactMetrics{}
	}
	return &ContactUsecase{
		sender:    sender,
		validator: v,
		inbox:     inbox,
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
	}
}

// Submit validates a contact form message and forwards it to the agency
// inbox. The returned copy carries the assigned id and timestamp.
func (uc *ContactUsecase) Submit(ctx context.Context, msg domain.ContactMessage) (*domain.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Subject = strings.TrimSpace(msg.Subject)

	if err := uc.validator.Contact(msg); err != nil {
		uc.metrics.ContactSubmitted("invalid")
		return nil, err
	}

	msg.ID = uuid.NewString()
	msg.SubmittedAt = uc.now().UTC()

	err := uc.sender.Send(ctx, email.Message{
		To:       []string{uc.inbox},
		ReplyTo:  msg.Email,
		Subject:  "Contacto: " + msg.Subject,
		BodyText: contactBody(msg),
	})
	if err != nil {
		uc.metrics.ContactSubmitted("failed")
		uc.logger.Errorw("ContactUsecase.Submit: failed to forward message", "message_id", msg.ID, "error", err)
		return nil, fmt.Errorf("forward contact message: %w", err)
	}

	uc.metrics.ContactSubmitted("sent")
	uc.logger.Infow("ContactUsecase.Submit: message forwarded", "message_id", msg.ID)
	return &msg, nil
}

func contactBody(msg domain.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nombre: %s\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", msg.Phone)
	}
	fmt.Fprintf(&b, "Enviado: %s\n\n", msg.SubmittedAt.Format(time.RFC3339))
	b.WriteString(msg.Message)
	b.WriteString("\n")
	return b.String()
}
