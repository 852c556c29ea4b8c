package teamsfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roster = `
[lang]
name = "T-lang"
ping = "rust-lang/lang"
label = "T-lang"
members = ["alice", "@bob", "alice", " "]

[compiler]
ping = "rust-lang/compiler"
members = []
`

func TestParse(t *testing.T) {
	teams, err := Parse(strings.NewReader(roster))
	require.NoError(t, err)
	require.Len(t, teams, 2)

	assert.Equal(t, Team{
		Key:     "compiler",
		Name:    "compiler",
		Ping:    "rust-lang/compiler",
		Label:   "compiler",
		Members: []string{},
	}, teams[0])

	assert.Equal(t, "T-lang", teams[1].Name)
	assert.Equal(t, []string{"alice", "bob"}, teams[1].Members)
}

func TestParseRejectsInvalidRoster(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing ping", input: "[lang]\nname = \"T-lang\"\n"},
		{name: "unknown key", input: "[lang]\nping = \"rust-lang/lang\"\nlead = \"alice\"\n"},
		{name: "bad syntax", input: "[lang\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.toml")
	require.NoError(t, os.WriteFile(path, []byte(roster), 0o600))

	teams, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
