package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/governance/audit"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/repository"
)

// DefaultPasswordCost is the bcrypt cost used when none is configured.
const DefaultPasswordCost = 12

const minPasswordLength = 6

// SignupInput registers a new account.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountUseCase handles signup and credential checks.
type AccountUseCase struct {
	profiles    repository.ProfileRepository
	cost        int
	auditLogger *audit.Logger

	// compare is bcrypt.CompareHashAndPassword outside tests.
	compare   func(hash, password []byte) error
	dummyOnce sync.Once
	dummyHash []byte
}

// NewAccountUseCase creates a new AccountUseCase. A cost outside bcrypt's
// range falls back to DefaultPasswordCost.
func NewAccountUseCase(profiles repository.ProfileRepository, cost int) *AccountUseCase {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return &AccountUseCase{profiles: profiles, cost: cost, compare: bcrypt.CompareHashAndPassword}
}

// dummy returns a hash at the configured cost. Unknown emails are checked
// against it so they cost as much as a wrong password.
func (uc *AccountUseCase) dummy() []byte {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("farmwatch-no-such-profile"), uc.cost)
	})
	return uc.dummyHash
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *AccountUseCase) WithAuditLogger(al *audit.Logger) *AccountUseCase {
	uc.auditLogger = al
	return uc
}

// Signup creates a profile with the default role. Roles change only
// out-of-band.
func (uc *AccountUseCase) Signup(ctx context.Context, in SignupInput) (domain.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	var fields []apperrors.FieldError
	if in.Name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Code: "required"})
	}
	if in.Email == "" {
		fields = append(fields, apperrors.FieldError{Field: "email", Code: "required"})
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, apperrors.FieldError{Field: "email", Code: "format"})
	}
	if len(in.Password) < minPasswordLength {
		fields = append(fields, apperrors.FieldError{Field: "password", Code: "min_length"})
	}
	if len(fields) > 0 {
		return domain.Profile{}, apperrors.Validation(fields...)
	}

	hash, err := HashPassword(in.Password, uc.cost)
	if err != nil {
		return domain.Profile{}, apperrors.WriteFailed(err, apperrors.CodeProfileWriteFailed, "profile")
	}

	profile, err := uc.profiles.Create(ctx, domain.NewProfile{
		ID:           generateID(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         domain.DefaultRole,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return domain.Profile{}, apperrors.Conflict(apperrors.CodeEmailTaken, "email is already registered")
		}
		return domain.Profile{}, apperrors.WriteFailed(err, apperrors.CodeProfileWriteFailed, "profile")
	}

	if uc.auditLogger != nil {
		_ = uc.auditLogger.LogAction(ctx, "profile.signup", "profile", profile.ID, profile.ID, nil)
	}
	logger.Info("Profile created", zap.String("profile_id", profile.ID), zap.String("role", string(profile.Role)))
	return profile, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords produce the same error.
func (uc *AccountUseCase) Authenticate(ctx context.Context, email, password string) (domain.Profile, error) {
	creds, err := uc.profiles.CredentialsByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			_ = uc.compare(uc.dummy(), []byte(password))
			logger.Warn("login failed: invalid credentials")
			return domain.Profile{}, apperrors.Unauthorized(apperrors.CodeInvalidCredentials, "invalid email or password")
		}
		return domain.Profile{}, apperrors.ReadFailed(err, "profile")
	}
	if err := uc.compare([]byte(creds.PasswordHash), []byte(password)); err != nil {
		logger.Warn("login failed: invalid credentials")
		return domain.Profile{}, apperrors.Unauthorized(apperrors.CodeInvalidCredentials, "invalid email or password")
	}
	if uc.auditLogger != nil {
		_ = uc.auditLogger.LogAction(ctx, "profile.login", "profile", creds.ID, creds.ID, nil)
	}
	return creds.Profile, nil
}

// HashPassword hashes a password with bcrypt (also used by farmctl seed).
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
