package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"coopsite/internal/apperr"
	"coopsite/internal/domain"
	"coopsite/internal/notify"
	"coopsite/internal/repos"
	"coopsite/internal/validate"
)

type MessageService struct {
	Messages *repos.MessageRepo
	Notify   notify.Publisher
	Now      Clock
}

func NewMessageService(msgs *repos.MessageRepo, pub notify.Publisher) *MessageService {
	return &MessageService{Messages: msgs, Notify: pub}
}

type MessageRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// Send stores a contact form submission as unread.
func (s *MessageService) Send(ctx context.Context, req MessageRequest) (domain.ContactMessage, error) {
	name, ok := validate.Name(req.Name)
	if !ok {
		return domain.ContactMessage{}, apperr.Validation("name", "name is required")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return domain.ContactMessage{}, apperr.Validation("email", "invalid email")
	}
	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		if phone, ok = validate.Phone(phone); !ok {
			return domain.ContactMessage{}, apperr.Validation("phone", "invalid phone number")
		}
	}
	subject, ok := validate.Text(req.Subject, 150)
	if !ok {
		return domain.ContactMessage{}, apperr.Validation("subject", "subject too long")
	}
	body, ok := validate.Text(req.Message, 5000)
	if !ok || body == "" {
		return domain.ContactMessage{}, apperr.Validation("message", "message is required")
	}

	m := domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Subject:   subject,
		Message:   body,
		CreatedAt: repos.Timestamp(s.Now.now()),
	}
	if err := s.Messages.Insert(ctx, m); err != nil {
		return domain.ContactMessage{}, err
	}
	publish(ctx, s.Notify, notify.NewEvent(notify.MessageCreated, m))
	return m, nil
}

func (s *MessageService) List(ctx context.Context, archived bool, search string) ([]domain.ContactMessage, error) {
	search, ok := validate.Text(search, 100)
	if !ok {
		return nil, apperr.Validation("q", "search too long")
	}
	return s.Messages.List(ctx, repos.MessageFilter{Archived: archived, Search: search})
}

func (s *MessageService) SetRead(ctx context.Context, id string, read bool) error {
	return s.Messages.SetRead(ctx, id, read)
}

func (s *MessageService) SetArchived(ctx context.Context, id string, archived bool) error {
	return s.Messages.SetArchived(ctx, id, archived)
}

func (s *MessageService) MarkAllRead(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("ids", "no messages selected")
	}
	return s.Messages.MarkReadMany(ctx, ids)
}

func (s *MessageService) ArchiveAll(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("ids", "no messages selected")
	}
	return s.Messages.ArchiveMany(ctx, ids)
}
