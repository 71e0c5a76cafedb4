package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	data := []byte(`
containers:
  numbers/b:
    - 3
    - "three"
  numbers/a:
    - {id: "1", tags: [x, y], nested: {n: 1}}
  letters/z: []
`)
	items, err := ParseItems(data)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "letters", items[0].Group)
	require.Equal(t, "z", items[0].Container)
	require.Empty(t, items[0].Items)

	require.Equal(t, "a", items[1].Container)
	require.Equal(t, []any{map[string]any{
		"id":     "1",
		"tags":   []any{"x", "y"},
		"nested": map[string]any{"n": 1},
	}}, items[1].Items)

	require.Equal(t, "b", items[2].Container)
	require.Equal(t, []any{3, "three"}, items[2].Items)
}

func TestParseItems_Empty(t *testing.T) {
	items, err := ParseItems([]byte("  \n"))
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestParseItems_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "bad key", data: "containers:\n  nogroup: [1]\n", want: `key "nogroup" must be group/container`},
		{name: "empty container", data: "containers:\n  g/: [1]\n", want: "must be group/container"},
		{name: "unknown field", data: "items:\n  g/a: [1]\n", want: "parsing items file"},
		{name: "not a list", data: "containers:\n  g/a: 1\n", want: "parsing items file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseItems([]byte(tt.data))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte("containers:\n  g/a: [1, 2]\n"), 0o600))

	items, err := LoadItems(path)
	require.NoError(t, err)
	require.Equal(t, []ContainerItems{{Group: "g", Container: "a", Items: []any{1, 2}}}, items)

	_, err = LoadItems(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "reading items file")
}
