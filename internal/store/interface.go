package store

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/DoyleJ11/team-draft-backend/internal/store Repository

import (
	"context"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// Repository persists drafts and the rosters they were built from.
type Repository interface {
	// SaveDraft stores the current draft state for a code
	SaveDraft(ctx context.Context, input *SaveDraftInput) error

	// GetDraft returns ErrNotFound when nothing is stored and ErrCorruptState
	// when the stored value cannot be decoded
	GetDraft(ctx context.Context, input *GetDraftInput) (*engine.State, error)

	// SaveRoster stores the roster used to reset a draft
	SaveRoster(ctx context.Context, input *SaveRosterInput) error

	// GetRoster retrieves the roster for a code
	GetRoster(ctx context.Context, input *GetRosterInput) ([]engine.Participant, error)

	// ListDrafts returns the codes of all stored drafts
	ListDrafts(ctx context.Context) ([]string, error)

	// DeleteDraft removes the draft and its roster
	DeleteDraft(ctx context.Context, input *DeleteDraftInput) error

	Close() error
}
