package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrations(t *testing.T) {
	migrations := GetMigrations()
	require.NotEmpty(t, migrations)

	t.Run("versions are sequential", func(t *testing.T) {
		for i, m := range migrations {
			assert.Equal(t, i+1, m.Version)
			assert.NotEmpty(t, m.Description)
			assert.NotEmpty(t, strings.TrimSpace(m.SQL))
		}
	})

	t.Run("covers every portal table", func(t *testing.T) {
		all := ""
		for _, m := range migrations {
			all += m.SQL
		}
		for _, table := range []string{"users", "organizations", "organization_members", "sessions", "chatbots", "api_keys"} {
			assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table, table)
		}
	})

	t.Run("idempotent DDL", func(t *testing.T) {
		for _, m := range migrations {
			assert.Contains(t, m.SQL, "IF NOT EXISTS", "migration %d", m.Version)
		}
	})
}
