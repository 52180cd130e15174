// Package notes implements per-server operator notes: short tickets a
// user submits from chat, tracked through an open/resolved/closed
// lifecycle and posted to the server's notes channel.
package notes

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/infoboard/internal/errors"
)

// Status values a note moves through.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusClosed   = "closed"
)

// Note is one submitted note.
type Note struct {
	// ID is a ULID that uniquely identifies this note
	ID string

	// ServerID is the server the note belongs to
	ServerID string

	// Status is one of open, resolved, closed
	Status string

	// Text is the note body as submitted
	Text string

	// SubmitterID and SubmitterName identify who submitted the note
	SubmitterID   string
	SubmitterName string

	// MessageID is the posted notes-channel message, empty until posted
	MessageID string

	// CreatedAt and UpdatedAt are Unix timestamps
	CreatedAt int64
	UpdatedAt int64
}

// Repository is the durable storage collaborator for notes.
type Repository interface {
	InsertNote(ctx context.Context, n *Note) error
	GetNote(ctx context.Context, serverID, id string) (*Note, error)
	ListNotes(ctx context.Context, serverID string) ([]Note, error)
	UpdateNote(ctx context.Context, n *Note) error
	DeleteNote(ctx context.Context, serverID, id string) error
}

// Service exposes the note operations the dispatcher uses.
type Service struct {
	repo Repository
}

// NewService creates a note service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new open note and returns it.
func (s *Service) Create(ctx context.Context, serverID, submitterID, submitterName, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidation("note text must not be empty")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	n := &Note{
		ID:            id,
		ServerID:      serverID,
		Status:        StatusOpen,
		Text:          text,
		SubmitterID:   submitterID,
		SubmitterName: submitterName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Get retrieves a note by id within a server.
func (s *Service) Get(ctx context.Context, serverID, id string) (*Note, error) {
	return s.repo.GetNote(ctx, serverID, id)
}

// List returns a server's notes in submission order.
func (s *Service) List(ctx context.Context, serverID string) ([]Note, error) {
	return s.repo.ListNotes(ctx, serverID)
}

// SetStatus moves a note to a new lifecycle status.
func (s *Service) SetStatus(ctx context.Context, serverID, id, status string) (*Note, error) {
	switch status {
	case StatusOpen, StatusResolved, StatusClosed:
	default:
		return nil, errors.NewValidation("status must be one of: open, resolved, closed")
	}

	n, err := s.repo.GetNote(ctx, serverID, id)
	if err != nil {
		return nil, err
	}
	n.Status = status
	n.UpdatedAt = time.Now().Unix()
	if err := s.repo.UpdateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// SetMessageID records the posted notes-channel message for a note.
func (s *Service) SetMessageID(ctx context.Context, serverID, id, messageID string) error {
	n, err := s.repo.GetNote(ctx, serverID, id)
	if err != nil {
		return err
	}
	n.MessageID = messageID
	n.UpdatedAt = time.Now().Unix()
	return s.repo.UpdateNote(ctx, n)
}

// Delete removes a note permanently.
func (s *Service) Delete(ctx context.Context, serverID, id string) error {
	return s.repo.DeleteNote(ctx, serverID, id)
}

func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
