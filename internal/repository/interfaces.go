package repository

import (
	"context"
	"time"

	"github.com/aki/journal-api/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
	CountAdmins(ctx context.Context) (int64, error)

	// DeleteCascade removes the user together with every row that references
	// it, children first, in a single transaction: attachments of the user's
	// entries, journal entries, oauth tokens, sessions, then the user row.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired reaps sessions whose expiry is before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) error
}

type JournalRepository interface {
	Create(ctx context.Context, entry *domain.JournalEntry) error
	// GetByID, Update and Delete are scoped by owning user id; a mismatch is
	// indistinguishable from a missing row.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.JournalEntry, error)
	Update(ctx context.Context, entry *domain.JournalEntry) error
	// Delete removes the entry's attachment rows and the entry itself in one
	// transaction.
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, int64, error)
	SearchByUser(ctx context.Context, userID uuid.UUID, query string, limit, offset int) ([]*domain.JournalEntry, int64, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	// GetOwned joins the parent entry and filters by its owning user id.
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*domain.Attachment, error)
	// ListKeysByUser returns the storage keys of every attachment owned
	// (via journal entries) by the user, for best-effort blob cleanup.
	ListKeysByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Journal    JournalRepository
	Attachment AttachmentRepository
}
