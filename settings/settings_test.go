package settings

import (
	"github.com/p7r0x7/chathash"
	"github.com/p7r0x7/chathash/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

var want = []classify.Setting{
	{Key: "__ADDR__", Value: "0x58D900"},
	{Key: "__PATTERNADDR__", Value: "0x58D90C"},
	{Key: "stop", Value: "9"},
	{Key: "go", Value: "5"},
	{Key: "^a.*b.*c$", Value: "42"},
}

func TestParse_YAML(t *testing.T) {
	src := `
__ADDR__: 0x58D900
__PATTERNADDR__: "0x58D90C"
stop: 9
go: 5
^a.*b.*c$: 42
`
	got, err := Parse([]byte(src), "yaml", "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_YAMLSection(t *testing.T) {
	src := `
other:
  ignored: 1
chatEvent:
  __ADDR__: 0x58D900
  __PATTERNADDR__: 0x58D90C
  stop: 9
  go: 5
  "^a.*b.*c$": 42
`
	got, err := Parse([]byte(src), "yml", DefaultSection)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	/* Without the section only top-level scalars remain. */
	got, err = Parse([]byte(src), "yml", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_JSONC(t *testing.T) {
	src := `{
	// chat detection
	"chatEvent": {
		"__ADDR__": "0x58D900",
		"__PATTERNADDR__": "0x58D90C",
		"stop": 9,
		"go": 5,
		"^a.*b.*c$": 42, /* trailing comma */
	},
}`
	got, err := Parse([]byte(src), "jsonc", "chatevent")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_TOML(t *testing.T) {
	src := `
top = 1

[chatEvent]
__ADDR__ = "0x58D900"
__PATTERNADDR__ = "0x58D90C"
stop = 9
go = 5
"^a.*b.*c$" = 42
`
	got, err := Parse([]byte(src), "toml", DefaultSection)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Parse([]byte(src), "toml", "")
	require.NoError(t, err)
	assert.Equal(t, []classify.Setting{{Key: "top", Value: "1"}}, got)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("a = 1"), "ini", "")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Parse([]byte("go: [1, 2]"), "yaml", "")
	assert.ErrorIs(t, err, ErrValue)

	_, err = Parse([]byte("go = 1.5"), "toml", "")
	assert.ErrorIs(t, err, ErrValue)

	_, err = Parse([]byte("- go"), "yaml", "")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chatEvent:\n  go: 5\n"), 0o600))
	got, err := Load(path, DefaultSection)
	require.NoError(t, err)
	assert.Equal(t, []classify.Setting{{Key: "go", Value: "5"}}, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	/* The loaded pairs compile. */
	_, err = classify.Compile(got, chathash.Keys{K0: 1, K1: 2}, nil)
	assert.NoError(t, err)
}
