package flexdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKnownLayouts(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"us slash", "03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"european slash", "25/03/2024", time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)},
		{"slash iso", "2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"us dash", "03-15-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.input)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got))
		})
	}
}

func TestParseAmbiguousPrefersUSOrder(t *testing.T) {
	// 01/02/2024 fits both the US and European readings; the US layout is
	// tried first so January 2nd wins.
	got, ok := Parse("01/02/2024")
	require.True(t, ok)
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 2, got.Day())
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a date", "2024-13-45", "99/99/9999"} {
		_, ok := Parse(input)
		assert.False(t, ok, "input %q should not parse", input)
	}
}
