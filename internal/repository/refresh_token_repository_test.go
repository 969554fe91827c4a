package repository

import (
	"context"
	"testing"
	"time"

	"recipehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRefreshToken(t *testing.T, repo RefreshTokenRepository, id, userID, token string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.RefreshToken{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func TestRefreshTokenFindByToken_RoundTrip(t *testing.T) {
	repo := NewRefreshTokenRepository(openTestDB(t))
	seedRefreshToken(t, repo, "rt1", "u1", "opaque-token")

	found, err := repo.FindByToken(context.Background(), "opaque-token")

	require.NoError(t, err)
	assert.Equal(t, "rt1", found.ID)
	assert.Equal(t, "u1", found.UserID)
}

func TestRefreshTokenFindByToken_ExcludesRevoked(t *testing.T) {
	repo := NewRefreshTokenRepository(openTestDB(t))
	seedRefreshToken(t, repo, "rt1", "u1", "opaque-token")

	require.NoError(t, repo.Revoke(context.Background(), "rt1"))

	_, err := repo.FindByToken(context.Background(), "opaque-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRefreshTokenDeleteByUser_RemovesAllSessions(t *testing.T) {
	repo := NewRefreshTokenRepository(openTestDB(t))
	seedRefreshToken(t, repo, "rt1", "u1", "token-a")
	seedRefreshToken(t, repo, "rt2", "u1", "token-b")
	seedRefreshToken(t, repo, "rt3", "u2", "token-c")

	require.NoError(t, repo.DeleteByUser(context.Background(), "u1"))

	_, err := repo.FindByToken(context.Background(), "token-a")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByToken(context.Background(), "token-b")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	still, err := repo.FindByToken(context.Background(), "token-c")
	require.NoError(t, err)
	assert.Equal(t, "rt3", still.ID)
}
