package apikeys

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallchat/portal/pkg/auth"
)

func newTestService(t *testing.T) (*PostgresService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresService(db), mock
}

func TestCreate(t *testing.T) {
	service, mock := newTestService(t)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO api_keys").
			WithArgs(int64(7), "CI pipeline", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

		created, err := service.Create(7, "CI pipeline")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(created.Key, KeyPrefix))
		assert.NotEqual(t, created.Key, created.APIKey.KeyHash)
		assert.Equal(t, auth.HashToken(created.Key), created.APIKey.KeyHash)
		assert.Equal(t, created.Key[:DisplayPrefixLen], created.APIKey.KeyPrefix)
		assert.Equal(t, "CI pipeline", created.APIKey.Name)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := service.Create(7, "   ")
		assert.ErrorIs(t, err, ErrNameRequired)
	})
}

func TestList(t *testing.T) {
	service, mock := newTestService(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, organization_id, name, key_prefix").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name", "key_prefix", "created_at", "last_used_at"}).
			AddRow(2, 7, "newer", "lc_live_bbbb", now, nil).
			AddRow(1, 7, "older", "lc_live_aaaa", now.Add(-time.Hour), now))

	keys, err := service.List(7)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "newer", keys[0].Name)
	assert.Empty(t, keys[0].KeyHash)
	assert.Nil(t, keys[0].LastUsedAt)
	assert.NotNil(t, keys[1].LastUsedAt)
}

func TestDelete(t *testing.T) {
	service, mock := newTestService(t)

	t.Run("deletes own key", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM api_keys").
			WithArgs(int64(3), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, service.Delete(7, 3))
	})

	t.Run("foreign key is a silent no-op", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM api_keys").
			WithArgs(int64(3), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, service.Delete(99, 3))
	})
}

func TestVerify(t *testing.T) {
	service, mock := newTestService(t)
	now := time.Now()

	t.Run("valid key touches last_used_at", func(t *testing.T) {
		key := KeyPrefix + strings.Repeat("a", 32)
		mock.ExpectQuery("UPDATE api_keys SET last_used_at").
			WithArgs(auth.HashToken(key)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name", "key_prefix", "created_at", "last_used_at"}).
				AddRow(1, 7, "CI pipeline", key[:DisplayPrefixLen], now, now))

		record, err := service.Verify(key)
		require.NoError(t, err)
		assert.Equal(t, int64(7), record.OrganizationID)
		assert.NotNil(t, record.LastUsedAt)
	})

	t.Run("unknown key", func(t *testing.T) {
		key := KeyPrefix + strings.Repeat("b", 32)
		mock.ExpectQuery("UPDATE api_keys SET last_used_at").
			WithArgs(auth.HashToken(key)).
			WillReturnError(sql.ErrNoRows)

		_, err := service.Verify(key)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("wrong prefix never hits the database", func(t *testing.T) {
		_, err := service.Verify("sk_test_not_ours")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}
