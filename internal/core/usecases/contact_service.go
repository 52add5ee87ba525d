package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/agrobot/internal/core/domain"
	"github.com/samirrijal/agrobot/internal/core/ports"
)

// ContactService handles contact-form submissions.
type ContactService struct {
	messages ports.MessageRepository
}

// NewContactService creates a new ContactService.
func NewContactService(messages ports.MessageRepository) *ContactService {
	return &ContactService{messages: messages}
}

// Submit stores a contact message. All fields are required.
func (s *ContactService) Submit(ctx context.Context, msg *domain.ContactMessage) error {
	msg.FirstName = strings.TrimSpace(msg.FirstName)
	msg.LastName = strings.TrimSpace(msg.LastName)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	if msg.FirstName == "" || msg.LastName == "" || msg.Email == "" || msg.Message == "" {
		return fmt.Errorf("%w: All fields are required.", domain.ErrValidation)
	}
	if len(msg.Message) > 5000 {
		return fmt.Errorf("%w: message too long (max 5000 characters)", domain.ErrValidation)
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return fmt.Errorf("%w: create message: %v", domain.ErrTransport, err)
	}
	return nil
}
