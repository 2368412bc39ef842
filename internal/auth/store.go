package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// OTPStore holds one-time codes, keyed per user with a TTL. Codes expire on
// their own and are consumed on successful verification.
type OTPStore interface {
	// Put stores the code for the user, replacing any outstanding one.
	Put(ctx context.Context, userID uuid.UUID, code string, ttl time.Duration) error

	// Consume verifies and invalidates the user's outstanding code. Returns
	// false when the code is wrong, expired or absent.
	Consume(ctx context.Context, userID uuid.UUID, code string) (bool, error)
}

// SessionStore maps opaque bearer tokens to user identities with a TTL.
type SessionStore interface {
	// Issue mints a new token for the user.
	Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)

	// Resolve returns the user ID a token belongs to, or uuid.Nil when the
	// token is unknown or expired.
	Resolve(ctx context.Context, token string) (uuid.UUID, error)

	// Revoke invalidates a token.
	Revoke(ctx context.Context, token string) error
}

const (
	otpKeyPrefix     = "otp:"
	sessionKeyPrefix = "session:"
)

// redisOTPStore implements OTPStore on Redis.
type redisOTPStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewOTPStore creates a Redis-backed OTP store.
func NewOTPStore(client *redis.Client, logger zerolog.Logger) OTPStore {
	return &redisOTPStore{
		client: client,
		logger: logger.With().Str("store", "otp").Logger(),
	}
}

// Put stores the code for the user, replacing any outstanding one.
func (s *redisOTPStore) Put(ctx context.Context, userID uuid.UUID, code string, ttl time.Duration) error {
	key := otpKeyPrefix + userID.String()
	if err := s.client.Set(ctx, key, code, ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to store OTP")
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Dur("ttl", ttl).
		Msg("OTP stored")

	return nil
}

// Consume verifies and invalidates the user's outstanding code.
func (s *redisOTPStore) Consume(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	key := otpKeyPrefix + userID.String()

	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to read OTP")
		return false, fmt.Errorf("failed to read OTP: %w", err)
	}

	if stored != code {
		return false, nil
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to consume OTP")
		return false, fmt.Errorf("failed to consume OTP: %w", err)
	}

	return true, nil
}

// redisSessionStore implements SessionStore on Redis.
type redisSessionStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client, logger zerolog.Logger) SessionStore {
	return &redisSessionStore{
		client: client,
		logger: logger.With().Str("store", "session").Logger(),
	}
}

// Issue mints a new opaque token for the user.
func (s *redisSessionStore) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	key := sessionKeyPrefix + token

	if err := s.client.Set(ctx, key, userID.String(), ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to store session")
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Dur("ttl", ttl).
		Msg("session issued")

	return token, nil
}

// Resolve returns the user ID a token belongs to.
func (s *redisSessionStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	stored, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, nil
		}
		s.logger.Error().Err(err).Msg("failed to resolve session")
		return uuid.Nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		s.logger.Error().Err(err).Msg("corrupt session entry")
		return uuid.Nil, fmt.Errorf("corrupt session entry: %w", err)
	}

	return userID, nil
}

// Revoke invalidates a token.
func (s *redisSessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		s.logger.Error().Err(err).Msg("failed to revoke session")
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
