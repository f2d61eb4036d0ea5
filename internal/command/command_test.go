package command

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohansahooo/vidshort/internal/config"
)

func TestReadLine(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]string{
		"secret\n":   "secret",
		"secret\r\n": "secret",
		"no-newline": "no-newline",
		"first\nsec": "first",
	} {
		got, err := readLine(strings.NewReader(input))
		require.NoError(t, err, input)
		assert.Equal(t, want, string(got), input)
	}

	_, err := readLine(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	_, err := configFrom(context.Background())
	require.Error(t, err)

	ctx := context.WithValue(context.Background(), configKey{}, config.Config{AppPort: 9000})
	cfg, err := configFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.AppPort)
}

func TestRootCommandTree(t *testing.T) {
	t.Parallel()

	root := RootCommand()
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"user", "create"}, {"user", "update"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	update, _, err := root.Find([]string{"user", "update"})
	require.NoError(t, err)
	assert.NotNil(t, update.Flags().Lookup("email"))
	assert.NotNil(t, update.Flags().Lookup("password"))
}

func TestUserUpdateRequiresChange(t *testing.T) {
	t.Parallel()

	root := RootCommand()
	update, _, err := root.Find([]string{"user", "update"})
	require.NoError(t, err)

	update.SetContext(context.Background())
	err = update.RunE(update, []string{"a@b.com"})
	require.ErrorContains(t, err, "nothing to update")
}
