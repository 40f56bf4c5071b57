// Package accounts defines the user store abstraction of the editor backend
// and its concrete adapters (in-memory, PostgreSQL, Google Sheets).
package accounts

import (
	"context"
	"time"

	"github.com/bkkdisplay/confeditor/internal/server/models"
)

// UpdateFields is a partial account update. Nil fields are left untouched.
// The save path sets all three together as one logical update.
type UpdateFields struct {
	LastUploadAt     *time.Time
	UploadCountToday *int
	ConfigBlob       *string
}

// Repository is the abstract user store. Implementations must treat emails
// as already normalized (models.NormalizeEmail) and must not assume a stable
// positional handle for a record between calls: the backing store may see
// concurrent row insertions from other processes.
type Repository interface {
	// FindByEmail returns the account or common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// Insert stores a new account, failing with common.ErrorDuplicate if the
	// email is already present.
	Insert(ctx context.Context, account *models.Account) error

	// Update applies the provided fields to an existing account, failing
	// with common.ErrorNotFound if the account is absent.
	Update(ctx context.Context, email string, fields UpdateFields) error
}
