package auth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Notifier delivers one-time codes to users. The production deployment plugs
// in a mail gateway; development uses the log-backed notifier below.
type Notifier interface {
	SendOTP(ctx context.Context, user *model.User, code string) error
}

// Service implements the two-step login flow: password check issuing an OTP,
// then OTP verification issuing an opaque session token.
type Service interface {
	// Login verifies the password and sends an OTP to the user.
	Login(ctx context.Context, req *model.LoginRequest) error

	// VerifyOTP consumes the user's outstanding OTP and mints a session
	// token for the caller.
	VerifyOTP(ctx context.Context, req *model.VerifyOTPRequest) (*model.LoginResponse, error)
}

// Config holds the TTLs for the expiring auth state.
type Config struct {
	SessionTTL time.Duration
	OTPTTL     time.Duration
}

// authService implements Service.
type authService struct {
	users    repository.UserRepository
	otps     OTPStore
	sessions SessionStore
	notifier Notifier
	cfg      Config
	logger   zerolog.Logger
}

// NewService creates a new auth service.
func NewService(
	users repository.UserRepository,
	otps OTPStore,
	sessions SessionStore,
	notifier Notifier,
	cfg Config,
	logger zerolog.Logger,
) Service {
	return &authService{
		users:    users,
		otps:     otps,
		sessions: sessions,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Login verifies the password and sends an OTP to the user.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) error {
	if req == nil || req.Username == "" || req.Password == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("failed to look up user")
		return fmt.Errorf("failed to log in: %w", err)
	}
	if user == nil {
		return model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("username", req.Username).Msg("password mismatch")
		return model.ErrInvalidCredentials
	}

	if !user.Active {
		return model.ErrUserNotActive
	}

	code := fmt.Sprintf("%06d", rand.IntN(1000000))
	if err := s.otps.Put(ctx, user.ID, code, s.cfg.OTPTTL); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, user, code); err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("failed to deliver OTP")
		return fmt.Errorf("failed to deliver OTP: %w", err)
	}

	s.logger.Info().Str("username", req.Username).Msg("OTP issued")

	return nil
}

// VerifyOTP consumes the user's outstanding OTP and mints a session token.
func (s *authService) VerifyOTP(ctx context.Context, req *model.VerifyOTPRequest) (*model.LoginResponse, error) {
	if req == nil || req.Username == "" || req.OTP == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Username and OTP are required")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if user == nil {
		return nil, model.ErrInvalidOTP
	}

	ok, err := s.otps.Consume(ctx, user.ID, req.OTP)
	if err != nil {
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("username", req.Username).Msg("invalid or expired OTP")
		return nil, model.ErrInvalidOTP
	}

	token, err := s.sessions.Issue(ctx, user.ID, s.cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}

	s.logger.Info().Str("username", req.Username).Msg("login completed")

	return &model.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

// logNotifier writes OTPs to the log instead of delivering them. Development
// only.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a Notifier that logs codes instead of sending them.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{logger: logger.With().Str("notifier", "log").Logger()}
}

func (n *logNotifier) SendOTP(_ context.Context, user *model.User, code string) error {
	n.logger.Info().
		Str("username", user.Username).
		Str("email", user.Email).
		Str("otp", code).
		Msg("OTP issued (log delivery)")
	return nil
}
