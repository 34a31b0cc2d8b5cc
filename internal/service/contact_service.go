package service

import (
	"context"

	"trendline/internal/mailer"

	"go.uber.org/zap"
)

// ContactService forwards contact form submissions to the shop inbox.
type ContactService interface {
	Submit(ctx context.Context, name, email, message string) error
}

type contactService struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewContactService creates a new instance of ContactService
func NewContactService(m mailer.Mailer, logger *zap.Logger) ContactService {
	return &contactService{mailer: m, logger: logger}
}

// Submit sends the message in the background; the submitter gets an immediate
// acknowledgement either way, and failures are only logged.
func (s *contactService) Submit(ctx context.Context, name, email, message string) error {
	go func() {
		if err := s.mailer.SendContactMessage(name, email, message); err != nil {
			s.logger.Error("Failed to forward contact message", zap.Error(err))
		}
	}()
	return nil
}
