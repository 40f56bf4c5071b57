package services

import (
	"context"
	"fmt"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/configdoc"
	"github.com/bkkdisplay/confeditor/internal/server/session"
)

// EditorSession binds the auth machine and the config service to a single
// client's session state. It owns the state lifecycle: created with named
// defaults once per session, reset as a whole on logout.
type EditorSession struct {
	auth    *AuthService
	configs *ConfigService
	state   *session.State
}

func NewEditorSession(auth *AuthService, configs *ConfigService) *EditorSession {
	return &EditorSession{auth: auth, configs: configs, state: session.NewState()}
}

func (e *EditorSession) State() *session.State { return e.state }

func (e *EditorSession) SubmitCredentials(ctx context.Context, email, password string) (ContinueOutcome, error) {
	return e.auth.SubmitCredentials(ctx, e.state, email, password)
}

func (e *EditorSession) VerifyCode(ctx context.Context, input string) error {
	return e.auth.VerifyCode(ctx, e.state, input)
}

func (e *EditorSession) ResendCode(ctx context.Context) error {
	return e.auth.ResendCode(ctx, e.state)
}

func (e *EditorSession) CancelVerification() {
	e.auth.CancelVerification(e.state)
}

func (e *EditorSession) Logout() {
	e.auth.Logout(e.state)
}

// SubmitEdits overlays a form submission onto the active document, saves
// the result and, on success, makes it the new active document. The save
// carries the fingerprint of the version this session last saw persisted,
// so a concurrent save by another client surfaces as common.ErrorConflict
// instead of being silently overwritten. Local-only changes such as an
// applied upload do not trip the check: they move the active document, not
// the stored fingerprint.
func (e *EditorSession) SubmitEdits(ctx context.Context, edits configdoc.Partial) (int, error) {
	if e.state.Stage != session.StageAuthenticated {
		return 0, common.ErrorNotLoggedIn
	}

	merged := configdoc.Merge(e.state.Document, edits)
	count, err := e.configs.Save(ctx, e.state.Email, merged, e.state.StoredFingerprint)
	if err != nil {
		return 0, err
	}
	e.state.SetStoredDocument(merged)
	return count, nil
}

// StageUpload parses uploaded JSON text and stages it as an override. On
// parse failure the error is returned and the active document stays
// untouched.
func (e *EditorSession) StageUpload(text string) error {
	if e.state.Stage != session.StageAuthenticated {
		return common.ErrorNotLoggedIn
	}
	partial, err := configdoc.Parse(text)
	if err != nil {
		return fmt.Errorf("uploaded config rejected: %w", err)
	}
	e.state.UploadedOverride = &partial
	return nil
}

// ApplyUploadedOverride overlays the staged override onto the active
// document, recomputes the fingerprint and discards the staging, so a
// re-render never applies the same upload twice. Applying with nothing
// staged is a no-op.
func (e *EditorSession) ApplyUploadedOverride() bool {
	if e.state.UploadedOverride == nil {
		return false
	}
	merged := configdoc.Merge(e.state.Document, *e.state.UploadedOverride)
	e.state.SetDocument(merged)
	e.state.UploadedOverride = nil
	return true
}

// Export renders the active document as downloadable pretty JSON.
func (e *EditorSession) Export() string {
	return configdoc.Export(e.state.Document)
}

// ReloadFromStore replaces the active document with the currently persisted
// one. Used to resolve a save conflict in favor of the other writer.
func (e *EditorSession) ReloadFromStore(ctx context.Context) error {
	if e.state.Stage != session.StageAuthenticated {
		return common.ErrorNotLoggedIn
	}
	e.state.SetStoredDocument(e.configs.Load(ctx, e.state.Email))
	return nil
}
