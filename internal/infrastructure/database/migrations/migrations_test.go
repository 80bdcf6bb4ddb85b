package migrations

import (
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestCollectMigrations_ParsesEmbeddedFiles(t *testing.T) {
	require.NoError(t, prepare())

	found, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, found, 3)

	for i, m := range found {
		require.Equal(t, int64(i+1), m.Version)
	}
}
