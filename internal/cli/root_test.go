package cli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dverbeek/patchwork/pkg/store"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"inspect", "render", "serve", "edit", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		require.True(t, found, "missing subcommand %q", name)
	}
}

func TestNewStoreNoneDisablesPersistence(t *testing.T) {
	c := New(io.Discard, LogInfo)
	st, err := c.newStore(t.Context(), "none")
	require.NoError(t, err)
	defer st.Close()

	names, err := st.List(t.Context())
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestNewStoreSelectsBackendBySpec(t *testing.T) {
	c := New(io.Discard, LogInfo)

	st, err := c.newStore(t.Context(), t.TempDir())
	require.NoError(t, err)
	require.IsType(t, &store.FileStore{}, st)
	require.NoError(t, st.Close())

	st, err = c.newStore(t.Context(), "redis://localhost:6379/1")
	require.NoError(t, err)
	require.IsType(t, &store.RedisStore{}, st)
	require.NoError(t, st.Close())

	st, err = c.newStore(t.Context(), "mongodb://localhost:27017")
	require.NoError(t, err)
	require.IsType(t, &store.MongoStore{}, st)
	require.NoError(t, st.Close())

	_, err = c.newStore(t.Context(), "redis://[bad")
	require.Error(t, err)
}
