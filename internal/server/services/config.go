package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/configdoc"
	"github.com/bkkdisplay/confeditor/internal/logging"
	"github.com/bkkdisplay/confeditor/internal/server/repositories/accounts"
)

// ConfigService orchestrates the configuration document lifecycle against
// the user store: fail-soft loading, daily upload quota and the
// optimistic-concurrency check on save.
type ConfigService struct {
	accounts         accounts.Repository
	logger           logging.Logger
	maxUploadsPerDay int
	now              func() time.Time
}

func NewConfigService(repo accounts.Repository, maxUploadsPerDay int, logger logging.Logger) *ConfigService {
	return &ConfigService{
		accounts:         repo,
		logger:           logger,
		maxUploadsPerDay: maxUploadsPerDay,
		now:              time.Now,
	}
}

// Load returns the account's defaulted configuration document. It fails
// soft: a missing account, a store error or a corrupt stored blob all
// degrade to the all-defaults document, so the editor is never unusable
// because of bad persisted state.
func (s *ConfigService) Load(ctx context.Context, email string) configdoc.Document {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "config load falling back to defaults", "email", email, "error", err.Error())
		}
		return configdoc.Defaults()
	}

	partial, err := configdoc.Parse(account.ConfigBlob)
	if err != nil {
		s.logger.Warn(ctx, "stored config is corrupt, using defaults", "email", email, "error", err.Error())
		return configdoc.Defaults()
	}
	return configdoc.WithDefaults(partial)
}

// Save persists the document for the account under the daily upload quota.
// expectedFingerprint, when non-empty, is compared against the fingerprint
// of the currently stored document; a mismatch means another writer saved
// since this session loaded, and is surfaced as common.ErrorConflict.
//
// The quota is advisory: the store offers no conditional writes, so two
// concurrent saves may both read the same counter and both pass. That race
// is accepted, not worked around here.
//
// On success Save returns the new upload count for the day.
func (s *ConfigService) Save(ctx context.Context, email string, doc configdoc.Document, expectedFingerprint string) (int, error) {
	// Re-resolve the record: the account may have vanished, and positional
	// handles into the backing store do not survive concurrent insertions.
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("loading account: %w", err)
	}

	if expectedFingerprint != "" {
		stored := configdoc.Defaults()
		if p, err := configdoc.Parse(account.ConfigBlob); err == nil {
			stored = configdoc.WithDefaults(p)
		}
		if configdoc.Fingerprint(stored) != expectedFingerprint {
			return 0, common.ErrorConflict
		}
	}

	now := s.now()
	count := 1
	if account.LastUploadAt != nil && sameDay(*account.LastUploadAt, now) {
		if account.UploadCountToday >= s.maxUploadsPerDay {
			return 0, &common.QuotaExceededError{Limit: s.maxUploadsPerDay, Used: account.UploadCountToday}
		}
		count = account.UploadCountToday + 1
	}

	blob := configdoc.Serialize(doc)
	err = s.accounts.Update(ctx, email, accounts.UpdateFields{
		LastUploadAt:     &now,
		UploadCountToday: &count,
		ConfigBlob:       &blob,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("saving config: %w", err)
	}

	s.logger.Info(ctx, "config saved", "email", email, "upload", count)
	return count, nil
}

// sameDay compares calendar days as the store recorded them, without
// normalizing time zones.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
