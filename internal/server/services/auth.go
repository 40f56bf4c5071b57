// Package services contains the server-side business logic: the
// authentication session machine, the configuration document lifecycle and
// the editor session glue binding both to one client.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/logging"
	"github.com/bkkdisplay/confeditor/internal/server/models"
	"github.com/bkkdisplay/confeditor/internal/server/notifier"
	"github.com/bkkdisplay/confeditor/internal/server/repositories/accounts"
	"github.com/bkkdisplay/confeditor/internal/server/session"
	"golang.org/x/crypto/bcrypt"
)

// ContinueOutcome discriminates what SubmitCredentials did: an existing
// account was logged in, or an implicit registration started and a
// verification code went out. Rejections are reported as errors.
type ContinueOutcome int

const (
	OutcomeLoggedIn ContinueOutcome = iota + 1
	OutcomeNeedsVerification
)

const codeLength = 6

// AuthService drives the login/registration/2FA state machine over a
// session.State. All timing decisions go through the injected clock.
type AuthService struct {
	accounts       accounts.Repository
	notifier       notifier.Notifier
	configs        *ConfigService
	logger         logging.Logger
	codeTTL        time.Duration
	resendCooldown time.Duration
	now            func() time.Time
}

func NewAuthService(repo accounts.Repository, n notifier.Notifier, configs *ConfigService, logger logging.Logger) *AuthService {
	return &AuthService{
		accounts:       repo,
		notifier:       n,
		configs:        configs,
		logger:         logger,
		codeTTL:        60 * time.Second,
		resendCooldown: 60 * time.Second,
		now:            time.Now,
	}
}

// SubmitCredentials is the single entry point behind the "Continue" action.
// It validates the input, then dispatches on account existence: a known
// email goes through login, an unknown one starts an implicit registration
// with an emailed verification code.
func (s *AuthService) SubmitCredentials(ctx context.Context, st *session.State, email, password string) (ContinueOutcome, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return 0, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}
	if !validEmailShape(email) {
		return 0, fmt.Errorf("%w: not a valid email address", common.ErrorValidation)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.login(ctx, st, account, password); err != nil {
			return 0, err
		}
		return OutcomeLoggedIn, nil
	case errors.Is(err, common.ErrorNotFound):
		if err := s.beginRegistration(ctx, st, email, password); err != nil {
			return 0, err
		}
		return OutcomeNeedsVerification, nil
	default:
		return 0, fmt.Errorf("looking up account: %w", err)
	}
}

func (s *AuthService) login(ctx context.Context, st *session.State, account *models.Account, password string) error {
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return fmt.Errorf("%w: bad credentials", common.ErrorAuth)
	}

	doc := s.configs.Load(ctx, account.Email)
	st.Stage = session.StageAuthenticated
	st.Email = account.Email
	st.Pending = nil
	st.UploadedOverride = nil
	st.SetStoredDocument(doc)

	s.logger.Info(ctx, "login", "email", account.Email)
	return nil
}

func (s *AuthService) beginRegistration(ctx context.Context, st *session.State, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	code, err := common.MakeVerificationCode()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	// Deliver before touching session state: a failed send leaves the
	// session anonymous and re-promptable.
	if err := s.notifier.SendCode(ctx, email, code); err != nil {
		return err
	}

	st.Stage = session.StagePendingVerification
	st.Pending = &models.PendingVerification{
		Email:        email,
		PasswordHash: hash,
		Code:         code,
		IssuedAt:     s.now(),
	}

	s.logger.Info(ctx, "verification code sent", "email", email)
	return nil
}

// VerifyCode checks the submitted code against the pending verification and,
// on success, promotes it to a persisted account. The code window is 60
// seconds inclusive; past it the attempt is expired regardless of the input.
func (s *AuthService) VerifyCode(ctx context.Context, st *session.State, input string) error {
	p := st.Pending
	if p == nil {
		return common.ErrorNoPendingCode
	}
	if p.CodeExpired(s.now(), s.codeTTL) {
		return common.ErrorExpiredCode
	}
	if !isDigits(input) || len(input) != codeLength {
		return fmt.Errorf("%w: enter all %d digits of the verification code", common.ErrorValidation, codeLength)
	}
	if input != p.Code {
		return common.ErrorCodeMismatch
	}

	account := &models.Account{
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    s.now(),
		ConfigBlob:   "{}",
	}
	// Uniqueness is re-checked by the store: a concurrent registration of
	// the same email must surface as a duplicate, not a silent overwrite.
	if err := s.accounts.Insert(ctx, account); err != nil {
		if errors.Is(err, common.ErrorDuplicate) {
			st.Pending = nil
			st.Stage = session.StageAnonymous
			return common.ErrorDuplicate
		}
		return fmt.Errorf("creating account: %w", err)
	}

	doc := s.configs.Load(ctx, account.Email)
	st.Stage = session.StageAuthenticated
	st.Email = account.Email
	st.Pending = nil
	st.UploadedOverride = nil
	st.SetStoredDocument(doc)

	s.logger.Info(ctx, "registration complete", "email", account.Email)
	return nil
}

// ResendCode issues a fresh code for the pending verification. At most one
// outstanding code per cooldown window; a failed delivery leaves the old
// code and its timestamp in place so the cooldown is not reset.
func (s *AuthService) ResendCode(ctx context.Context, st *session.State) error {
	p := st.Pending
	if p == nil {
		return common.ErrorNoPendingCode
	}
	now := s.now()
	if !p.ResendAvailable(now, s.resendCooldown) {
		return fmt.Errorf("%w: wait %d more seconds", common.ErrorResendLocked,
			p.ResendWaitSeconds(now, s.resendCooldown))
	}

	code, err := common.MakeVerificationCode()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}
	if err := s.notifier.SendCode(ctx, p.Email, code); err != nil {
		return err
	}

	// The previous code is invalidated only once the new one is out.
	p.Code = code
	p.IssuedAt = s.now()

	s.logger.Info(ctx, "verification code resent", "email", p.Email)
	return nil
}

// CancelVerification discards any pending verification and returns the
// session to anonymous. Idempotent: cancelling twice, or with nothing
// pending, is a no-op.
func (s *AuthService) CancelVerification(st *session.State) {
	if st.Stage == session.StageAuthenticated {
		return
	}
	st.Pending = nil
	st.Stage = session.StageAnonymous
}

// Logout clears the whole session back to its initial defaults atomically.
func (s *AuthService) Logout(st *session.State) {
	st.Reset()
}

// validEmailShape is the structural check applied before any store lookup:
// an "@", a "." somewhere after it, and at least 5 characters overall.
func validEmailShape(email string) bool {
	if len(email) < 5 {
		return false
	}
	at := strings.Index(email, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
