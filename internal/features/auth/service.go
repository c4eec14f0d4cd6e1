package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/email"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
	"github.com/mo-amir99/coursemarket-server-go/pkg/validation"
)

const otpDigits = 6

// Session is returned by register, login and refresh.
type Session struct {
	User user.User `json:"user"`
	jwt.TokenPair
}

// ProfileInput carries self-service profile edits.
type ProfileInput struct {
	FullName  *string
	Email     *string
	Password  *string
	AvatarURL *string
}

// Service implements credential flows on top of the user store.
type Service struct {
	db       *gorm.DB
	tokens   *jwt.Issuer
	mailer   email.Sender
	otpTTL   time.Duration
	resetTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds an auth service.
func NewService(db *gorm.DB, tokens *jwt.Issuer, mailer email.Sender, otpTTL, resetTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		tokens:   tokens,
		mailer:   mailer,
		otpTTL:   otpTTL,
		resetTTL: resetTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, fullName, emailAddr, password string) (Session, error) {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(emailAddr) == "" || password == "" {
		return Session{}, ErrMissingFields
	}

	created, err := user.Create(s.db.WithContext(ctx), user.CreateInput{
		FullName: fullName,
		Email:    emailAddr,
		Password: password,
		Role:     types.RoleCustomer,
	})
	if err != nil {
		return Session{}, err
	}
	return s.startSession(ctx, created)
}

// Login verifies credentials. Inactive accounts are refused.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (Session, error) {
	if strings.TrimSpace(emailAddr) == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	account, err := user.GetByEmail(s.db.WithContext(ctx), emailAddr)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !account.ComparePassword(password) {
		return Session{}, ErrInvalidCredentials
	}
	if account.Status == types.UserStatusInactive {
		return Session{}, ErrInactiveAccount
	}

	return s.startSession(ctx, account)
}

// Refresh rotates a refresh token. Only the most recently issued one is accepted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.VerifyRefresh(strings.TrimSpace(refreshToken))
	if err != nil {
		return Session{}, ErrInvalidRefreshToken
	}

	account, err := user.Get(s.db.WithContext(ctx), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, err
	}
	if account.RefreshToken == nil || *account.RefreshToken != refreshToken {
		return Session{}, ErrInvalidRefreshToken
	}
	if account.Status == types.UserStatusInactive {
		return Session{}, ErrInactiveAccount
	}

	return s.startSession(ctx, account)
}

// Logout revokes the stored refresh token.
func (s *Service) Logout(ctx context.Context, actor user.User) error {
	return user.SetRefreshToken(s.db.WithContext(ctx), actor.ID, nil)
}

// ForgotPassword mails a reset code when the email belongs to an account.
// Unknown emails and delivery failures are not reported to the caller.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	normalized, err := validation.NormalizeEmail(emailAddr)
	if err != nil {
		return user.ErrInvalidEmail
	}

	db := s.db.WithContext(ctx)
	if _, err := user.GetByEmail(db, normalized); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := replaceOTP(db, normalized, string(hash), s.now().Add(s.otpTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetOTP(ctx, normalized, code, s.otpTTL); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset code",
			slog.String("email", normalized),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// VerifyOTP exchanges a valid code for a short-lived password reset token.
func (s *Service) VerifyOTP(ctx context.Context, emailAddr, code string) (string, error) {
	normalized, err := validation.NormalizeEmail(emailAddr)
	if err != nil || strings.TrimSpace(code) == "" {
		return "", ErrInvalidOTP
	}

	db := s.db.WithContext(ctx)
	otp, err := activeOTP(db, normalized, s.now())
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.OTPHash), []byte(strings.TrimSpace(code))) != nil {
		if err := recordAttempt(db, otp); err != nil {
			return "", err
		}
		return "", ErrInvalidOTP
	}

	account, err := user.GetByEmail(db, normalized)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrInvalidOTP
		}
		return "", err
	}
	if err := consumeOTP(db, otp.ID); err != nil {
		return "", err
	}

	return s.tokens.Purpose(account.ID, jwt.PurposePasswordReset, s.resetTTL)
}

// ResetPassword sets a new password and revokes outstanding refresh tokens.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.VerifyPurpose(strings.TrimSpace(resetToken), jwt.PurposePasswordReset)
	if err != nil {
		return ErrInvalidResetToken
	}

	db := s.db.WithContext(ctx)
	if _, err := user.Update(db, claims.UserID, user.UpdateInput{Password: &newPassword}); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return user.SetRefreshToken(db, claims.UserID, nil)
}

// UpdateProfile applies self-service edits. Empty strings leave a field unchanged.
func (s *Service) UpdateProfile(ctx context.Context, actor user.User, input ProfileInput) (user.User, error) {
	return user.Update(s.db.WithContext(ctx), actor.ID, user.UpdateInput{
		FullName:  nonEmpty(input.FullName),
		Email:     nonEmpty(input.Email),
		Password:  nonEmpty(input.Password),
		AvatarURL: nonEmpty(input.AvatarURL),
	})
}

func (s *Service) startSession(ctx context.Context, account user.User) (Session, error) {
	pair, err := s.tokens.Pair(account.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}
	if err := user.SetRefreshToken(s.db.WithContext(ctx), account.ID, &pair.RefreshToken); err != nil {
		return Session{}, err
	}
	return Session{User: account, TokenPair: pair}, nil
}

func generateOTP() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
