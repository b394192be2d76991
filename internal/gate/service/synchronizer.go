package service

import (
	"context"
	"time"

	"github.com/harborchat/harbor/internal/gate/domain"
	"github.com/harborchat/harbor/internal/gate/store"
	"github.com/harborchat/harbor/pkg/slogx"
)

// Synchronizer mirrors provider profiles into the local user store.
type Synchronizer struct {
	Store store.Store
}

// Reconcile upserts the local projection for a regular identity. It is
// best-effort relative to the authentication result: a store failure is
// logged and swallowed so a local-store outage never blocks a session.
// Repeated reconciliation with identical input is a no-op from the
// caller's standpoint.
func (s *Synchronizer) Reconcile(ctx context.Context, identity domain.Identity) {
	if identity.IsGuest() {
		return
	}

	rec := domain.LocalUserRecord{
		ID:        identity.SubjectID,
		Name:      identity.DisplayName,
		Email:     identity.Email,
		AvatarURL: identity.AvatarURL,
	}
	if identity.EmailVerified {
		now := time.Now().UTC()
		rec.EmailVerifiedAt = &now
	}

	if err := s.Store.Users().UpsertUser(ctx, rec); err != nil {
		slogx.FromContext(ctx).Warn("user sync failed",
			"subject_id", identity.SubjectID,
			"err", err,
		)
	}
}
