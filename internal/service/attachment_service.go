package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/elvificent/supportdesk/internal/blob"
	"github.com/elvificent/supportdesk/internal/domain"
	"github.com/elvificent/supportdesk/internal/repository"
	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

// AttachmentService stores ticket attachments: bytes in the blob store,
// metadata in Postgres.
type AttachmentService struct {
	store   repository.Store
	blobs   blob.Store
	maxSize int64
}

// NewAttachmentService builds the service.
func NewAttachmentService(store repository.Store, blobs blob.Store, maxSize int64) *AttachmentService {
	return &AttachmentService{store: store, blobs: blobs, maxSize: maxSize}
}

// Upload saves the attachment to a live ticket.
func (s *AttachmentService) Upload(ctx context.Context, ticketID, fileName, contentType string, data []byte) (*domain.TicketAttachment, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("attachment is empty", nil)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, apperrors.NewValidationError("attachment too large",
			map[string]any{"size_bytes": len(data), "max_bytes": s.maxSize})
	}

	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidState("ticket is closed", map[string]any{"ticket_id": ticket.ID})
	}

	key, err := s.blobs.Save(fileName, data)
	if err != nil {
		return nil, err
	}
	attachment := &domain.TicketAttachment{
		TicketID:    ticket.ID,
		StorageKey:  key,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}
	if err := s.store.Attachments().Create(ctx, attachment); err != nil {
		// Orphaned blobs are cheaper than lost metadata; best-effort cleanup.
		_ = s.blobs.Remove(key)
		return nil, err
	}
	return attachment, nil
}

// Download returns attachment metadata and bytes.
func (s *AttachmentService) Download(ctx context.Context, id string) (*domain.TicketAttachment, []byte, error) {
	attachment, err := s.store.Attachments().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("attachment", map[string]any{"attachment_id": id})
		}
		return nil, nil, err
	}
	data, err := s.blobs.Open(attachment.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return attachment, data, nil
}

// ListByTicket returns a ticket's attachments.
func (s *AttachmentService) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAttachment, error) {
	return s.store.Attachments().ListByTicket(ctx, ticketID)
}

// Delete removes the metadata row and the stored bytes.
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	attachment, err := s.store.Attachments().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": id})
		}
		return err
	}
	if err := s.store.Attachments().Delete(ctx, id); err != nil {
		return err
	}
	return s.blobs.Remove(attachment.StorageKey)
}
