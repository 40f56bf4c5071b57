// Package session holds the per-client editor session state. One State
// belongs to exactly one connected client and is passed by reference into
// the services; it is never shared across unrelated users.
package session

import (
	"github.com/bkkdisplay/confeditor/internal/configdoc"
	"github.com/bkkdisplay/confeditor/internal/server/models"
)

type Stage int

const (
	StageAnonymous Stage = iota
	StagePendingVerification
	StageAuthenticated
)

func (s Stage) String() string {
	switch s {
	case StagePendingVerification:
		return "pending_verification"
	case StageAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is the session record. Fields are reset together, never
// independently, so the session can never hold a stale mix (for example an
// old fingerprint next to a new document).
//
// Two fingerprints are tracked. Fingerprint always matches Document and is
// the cache key for stateful editing widgets. StoredFingerprint is the
// fingerprint of the last version this session saw persisted; it diverges
// from Fingerprint while the session holds unsaved local changes (an
// applied upload) and is what a save compares against the store.
type State struct {
	Stage             Stage
	Email             string
	Document          configdoc.Document
	Fingerprint       string
	StoredFingerprint string
	UploadedOverride  *configdoc.Partial
	Pending           *models.PendingVerification
}

// NewState returns a session initialized with named defaults: anonymous,
// all-defaults document, no staged upload, no pending verification.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset returns every field to its initial default atomically.
func (s *State) Reset() {
	doc := configdoc.Defaults()
	fp := configdoc.Fingerprint(doc)
	*s = State{
		Stage:             StageAnonymous,
		Document:          doc,
		Fingerprint:       fp,
		StoredFingerprint: fp,
	}
}

// SetDocument replaces the active document and recomputes the fingerprint
// in the same step. StoredFingerprint is left alone: the new document is a
// local change until it is saved.
func (s *State) SetDocument(d configdoc.Document) {
	s.Document = d
	s.Fingerprint = configdoc.Fingerprint(d)
}

// SetStoredDocument replaces the active document with one known to be
// persisted, bringing StoredFingerprint along. Used on load, after a
// successful save and on reload.
func (s *State) SetStoredDocument(d configdoc.Document) {
	s.SetDocument(d)
	s.StoredFingerprint = s.Fingerprint
}
