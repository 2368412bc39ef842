package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPStore_Put(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewOTPStore(client, logger)

		mock.ExpectSet("otp:"+userID.String(), "123456", 5*time.Minute).SetVal("OK")

		err := store.Put(ctx, userID, "123456", 5*time.Minute)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error - redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewOTPStore(client, logger)

		mock.ExpectSet("otp:"+userID.String(), "123456", 5*time.Minute).
			SetErr(errors.New("connection refused"))

		err := store.Put(ctx, userID, "123456", 5*time.Minute)

		require.Error(t, err)
	})
}

func TestOTPStore_Consume(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	key := "otp:" + userID.String()

	t.Run("Success - matching code is consumed", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewOTPStore(client, logger)

		mock.ExpectGet(key).SetVal("123456")
		mock.ExpectDel(key).SetVal(1)

		ok, err := store.Consume(ctx, userID, "123456")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong code leaves entry alive", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewOTPStore(client, logger)

		mock.ExpectGet(key).SetVal("123456")

		ok, err := store.Consume(ctx, userID, "654321")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Expired or absent code", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewOTPStore(client, logger)

		mock.ExpectGet(key).RedisNil()

		ok, err := store.Consume(ctx, userID, "123456")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Error - redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewOTPStore(client, logger)

		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		ok, err := store.Consume(ctx, userID, "123456")

		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestSessionStore_Issue(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewSessionStore(client, logger)

		// The token is random, match the key by shape
		mock.Regexp().ExpectSet(`session:[0-9a-f-]{36}`, userID.String(), time.Hour).SetVal("OK")

		token, err := store.Issue(ctx, userID, time.Hour)

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		_, parseErr := uuid.Parse(token)
		assert.NoError(t, parseErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error - redis failure", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewSessionStore(client, logger)

		mock.Regexp().ExpectSet(`session:.+`, userID.String(), time.Hour).
			SetErr(errors.New("connection refused"))

		token, err := store.Issue(ctx, userID, time.Hour)

		require.Error(t, err)
		assert.Empty(t, token)
	})
}

func TestSessionStore_Resolve(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	token := uuid.NewString()

	t.Run("Success", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewSessionStore(client, logger)

		mock.ExpectGet("session:" + token).SetVal(userID.String())

		resolved, err := store.Resolve(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, userID, resolved)
	})

	t.Run("Unknown token resolves to nil UUID", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewSessionStore(client, logger)

		mock.ExpectGet("session:" + token).RedisNil()

		resolved, err := store.Resolve(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, resolved)
	})

	t.Run("Error - corrupt entry", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewSessionStore(client, logger)

		mock.ExpectGet("session:" + token).SetVal("not-a-uuid")

		resolved, err := store.Resolve(ctx, token)

		require.Error(t, err)
		assert.Equal(t, uuid.Nil, resolved)
	})
}

func TestSessionStore_Revoke(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	token := uuid.NewString()

	client, mock := redismock.NewClientMock()
	store := NewSessionStore(client, logger)

	mock.ExpectDel("session:" + token).SetVal(1)

	err := store.Revoke(ctx, token)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
