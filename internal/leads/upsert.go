package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/LeadGoat/internal/storage"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

// identityKeyPrefix marks synthesized keys for candidates without a phone
// number.
const identityKeyPrefix = "NO_PHONE_"

// Upserter performs idempotent create-or-update of leads against the store.
type Upserter struct {
	store  storage.LeadStore
	logger *slog.Logger
}

// NewUpserter creates an Upserter backed by the given store.
func NewUpserter(store storage.LeadStore, logger *slog.Logger) *Upserter {
	return &Upserter{
		store:  store,
		logger: logger.With("component", "upserter"),
	}
}

// IdentityKey derives the deduplication key for a candidate: the trimmed
// phone when present, otherwise a synthesized key from the prefix, the
// whitespace-collapsed name and the current timestamp. Keys without a phone
// are deliberately unique per call: an unphoned listing cannot be matched
// across runs.
func IdentityKey(cand types.Candidate) string {
	if phone := strings.TrimSpace(cand.Phone); phone != "" {
		return phone
	}
	name := strings.Join(strings.Fields(cand.Name), "_")
	return fmt.Sprintf("%s%s_%d", identityKeyPrefix, name, time.Now().UnixMilli())
}

// Upsert persists the candidate: one store mutation per call, update when
// the identity key already exists, create otherwise. Safe to call
// repeatedly with the same logical candidate.
func (u *Upserter) Upsert(ctx context.Context, cand types.Candidate, source types.Source, defaultScore int) (*types.Lead, error) {
	key := IdentityKey(cand)

	existing, err := u.store.FindByKey(ctx, key)
	switch {
	case errors.Is(err, types.ErrLeadNotFound):
		lead := &types.Lead{
			IdentityKey: key,
			Name:        cand.Name,
			Category:    cand.Category,
			Phone:       cand.Phone,
			Location:    cand.Location,
			Website:     cand.Website,
			Source:      source,
			Score:       defaultScore,
		}
		created, err := u.store.Create(ctx, lead)
		if err != nil {
			return nil, fmt.Errorf("create lead %q: %w", cand.Name, err)
		}
		u.logger.Debug("lead created", "id", created.ID, "name", created.Name)
		return created, nil

	case err != nil:
		return nil, fmt.Errorf("find lead by key %q: %w", key, err)
	}

	// Partial update: only fields the candidate actually carries overwrite.
	patch := types.LeadPatch{Name: types.String(cand.Name)}
	if cand.Category != "" {
		patch.Category = types.String(cand.Category)
	}
	if cand.Location != "" {
		patch.Location = types.String(cand.Location)
	}
	if cand.Website != "" {
		patch.Website = types.String(cand.Website)
	}

	updated, err := u.store.Update(ctx, existing.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update lead %s: %w", existing.ID, err)
	}
	u.logger.Debug("lead updated", "id", updated.ID, "name", updated.Name)
	return updated, nil
}

// Update applies a partial update to an existing lead. It never creates.
func (u *Upserter) Update(ctx context.Context, id string, patch types.LeadPatch) (*types.Lead, error) {
	return u.store.Update(ctx, id, patch)
}

// List returns all stored leads, used by bulk re-enrichment and export.
func (u *Upserter) List(ctx context.Context) ([]*types.Lead, error) {
	return u.store.List(ctx)
}
