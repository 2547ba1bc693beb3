// Package dedupe decides whether an incoming recipe creates a new record,
// updates an existing one, or is skipped.
package dedupe

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/models"
)

// Action is what Apply does with a draft.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Store is the part of storage.Storage the resolver needs.
type Store interface {
	FindIDByTitle(ctx context.Context, title string) (string, bool, error)
	Upsert(ctx context.Context, id string, draft *models.RecipeDraft) (string, error)
}

// Decision is the outcome of Resolve. ExistingID is set for update and for a
// skip caused by a match.
type Decision struct {
	Action     Action
	ExistingID string
}

// Resolver matches drafts against stored recipes by normalized title.
type Resolver struct {
	store Store
	// mu makes match-then-write atomic across concurrent imports, so two
	// files with the same title cannot both pass the skip check.
	mu sync.Mutex
}

// NewResolver returns a Resolver over store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve decides the action for draft under policy without writing anything.
func (r *Resolver) Resolve(ctx context.Context, draft *models.RecipeDraft, policy models.DuplicatePolicy) (Decision, error) {
	if policy == models.PolicyCreate {
		return Decision{Action: ActionCreate}, nil
	}
	id, found, err := r.store.FindIDByTitle(ctx, draft.Title)
	if err != nil {
		return Decision{}, errors.NewPersistence(fmt.Errorf("find duplicate: %w", err))
	}
	if !found {
		return Decision{Action: ActionCreate}, nil
	}
	switch policy {
	case models.PolicyUpdate:
		return Decision{Action: ActionUpdate, ExistingID: id}, nil
	case models.PolicySkip, "":
		return Decision{Action: ActionSkip, ExistingID: id}, nil
	}
	return Decision{}, errors.NewInvalidRequest(fmt.Sprintf("unknown duplicate policy %q", policy))
}

// Apply resolves draft and performs the write. It returns the persisted id,
// or "" with ActionSkip when nothing was written.
func (r *Resolver) Apply(ctx context.Context, draft *models.RecipeDraft, policy models.DuplicatePolicy) (string, Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.Resolve(ctx, draft, policy)
	if err != nil {
		return "", "", err
	}
	if d.Action == ActionSkip {
		return "", ActionSkip, nil
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	id, err := r.store.Upsert(ctx, d.ExistingID, draft)
	if err != nil {
		return "", "", errors.NewPersistence(err)
	}
	return id, d.Action, nil
}
