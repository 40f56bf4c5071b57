package accounts

import (
	"context"
	"sync"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/server/models"
)

// MemoryRepository is a mutex-guarded map store used by tests and local
// development.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]models.Account)}
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := cloneAccount(a)
	return &out, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Email]; ok {
		return common.ErrorDuplicate
	}
	r.accounts[account.Email] = cloneAccount(*account)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, email string, fields UpdateFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[email]
	if !ok {
		return common.ErrorNotFound
	}
	if fields.LastUploadAt != nil {
		t := *fields.LastUploadAt
		a.LastUploadAt = &t
	}
	if fields.UploadCountToday != nil {
		a.UploadCountToday = *fields.UploadCountToday
	}
	if fields.ConfigBlob != nil {
		a.ConfigBlob = *fields.ConfigBlob
	}
	r.accounts[email] = a
	return nil
}

// cloneAccount copies pointer-typed fields so callers never alias the map.
func cloneAccount(a models.Account) models.Account {
	out := a
	out.PasswordHash = append([]byte(nil), a.PasswordHash...)
	if a.LastUploadAt != nil {
		t := *a.LastUploadAt
		out.LastUploadAt = &t
	}
	return out
}
