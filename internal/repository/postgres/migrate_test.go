package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_AppliesPrefixInOrder(t *testing.T) {
	migrations, err := LoadMigrations("test_")
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "001_core", migrations[0].Version)
	assert.Equal(t, "002_interrogations", migrations[1].Version)
	assert.Equal(t, "003_tasks", migrations[2].Version)

	for _, m := range migrations {
		assert.NotContains(t, m.SQL, "{{prefix}}", m.Version)
	}
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS test_workspace_members")
	assert.True(t, strings.Contains(migrations[0].SQL, "REFERENCES test_folders(id) ON DELETE CASCADE"))
}

func TestTableNames_AllParentsFirst(t *testing.T) {
	tables := NewTableNames("dev_")
	all := tables.All()

	index := func(name string) int {
		for i, n := range all {
			if n == name {
				return i
			}
		}
		return -1
	}

	assert.Less(t, index(tables.Users), index(tables.Workspaces))
	assert.Less(t, index(tables.Workspaces), index(tables.Folders))
	assert.Less(t, index(tables.Folders), index(tables.Files))
	assert.Less(t, index(tables.Interrogations), index(tables.Tasks))
	assert.Less(t, index(tables.Tasks), index(tables.TaskComments))
}
