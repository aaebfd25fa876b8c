package contact

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jeremyjsx/creativelab/internal/validate"
)

const (
	SuccessMessage = "Message sent successfully! We'll be in touch soon."
	FailureMessage = "Missing Fields. Failed to submit message."
)

var submissionValidator = validate.New()

type Submission struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"min=10"`
}

var messages = map[string]string{
	"email.required": "Invalid email",
	"email.email":    "Invalid email",
	"message.min":    "Message must be at least 10 characters",
}

// Service accepts contact form submissions. Delivery is a log line; no mail
// provider is wired.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) Submit(_ context.Context, in Submission) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validate.Struct(submissionValidator, in, messages); err != nil {
		return err
	}
	s.logger.Info("contact form submitted", "email", in.Email, "message_length", len(in.Message))
	return nil
}
