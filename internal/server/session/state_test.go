package session

import (
	"testing"

	"github.com/bkkdisplay/confeditor/internal/configdoc"
	"github.com/bkkdisplay/confeditor/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, StageAnonymous, s.Stage)
	assert.Equal(t, configdoc.Defaults(), s.Document)
	assert.Equal(t, configdoc.Fingerprint(configdoc.Defaults()), s.Fingerprint)
	assert.Equal(t, s.Fingerprint, s.StoredFingerprint)
	assert.Nil(t, s.UploadedOverride)
	assert.Nil(t, s.Pending)
}

func TestReset_ClearsEveryField(t *testing.T) {
	s := NewState()
	doc := configdoc.Defaults()
	doc.Layout.View = "list"
	s.Stage = StageAuthenticated
	s.Email = "a@b.co"
	s.SetDocument(doc)
	s.UploadedOverride = &configdoc.Partial{}
	s.Pending = &models.PendingVerification{Email: "a@b.co"}

	s.Reset()
	assert.Equal(t, NewState(), s)
}

func TestSetDocument_KeepsFingerprintInStep(t *testing.T) {
	s := NewState()
	doc := configdoc.Defaults()
	doc.RefreshIntervalSeconds = 90

	s.SetDocument(doc)
	assert.Equal(t, doc, s.Document)
	assert.Equal(t, configdoc.Fingerprint(doc), s.Fingerprint)
	assert.NotEqual(t, configdoc.Fingerprint(configdoc.Defaults()), s.Fingerprint)
}

func TestSetDocument_LeavesStoredFingerprint(t *testing.T) {
	s := NewState()
	stored := s.StoredFingerprint

	doc := configdoc.Defaults()
	doc.RefreshIntervalSeconds = 90
	s.SetDocument(doc)

	assert.Equal(t, stored, s.StoredFingerprint)
	assert.NotEqual(t, s.StoredFingerprint, s.Fingerprint)
}

func TestSetStoredDocument_MovesBothFingerprints(t *testing.T) {
	s := NewState()

	doc := configdoc.Defaults()
	doc.RefreshIntervalSeconds = 90
	s.SetStoredDocument(doc)

	assert.Equal(t, doc, s.Document)
	assert.Equal(t, configdoc.Fingerprint(doc), s.Fingerprint)
	assert.Equal(t, s.Fingerprint, s.StoredFingerprint)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "anonymous", StageAnonymous.String())
	assert.Equal(t, "pending_verification", StagePendingVerification.String())
	assert.Equal(t, "authenticated", StageAuthenticated.String())
}
