package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamListRoundTrip(t *testing.T) {
	v, err := TeamList{"rust-lang/lang", "rust-lang/compiler"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "rust-lang/lang,rust-lang/compiler", v)

	var l TeamList
	require.NoError(t, l.Scan([]byte("rust-lang/lang, ,rust-lang/compiler")))
	assert.Equal(t, TeamList{"rust-lang/lang", "rust-lang/compiler"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
}

func TestLabelsScanTextArray(t *testing.T) {
	var l Labels
	require.NoError(t, l.Scan(`{T-lang,"needs review"}`))
	assert.Equal(t, Labels{"T-lang", "needs review"}, l)
	assert.True(t, l.Has("T-lang"))
	assert.False(t, l.Has("T-libs"))
}

func TestPollStatusPending(t *testing.T) {
	s := PollStatus{Respondents: []Respondent{
		{User: User{Login: "alice"}, Responded: true},
		{User: User{Login: "bob"}},
	}}

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].User.Login)
}
