package codegen

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		n        int
		expected []string
	}{
		{
			name:     "continues padded sequence",
			existing: []string{"id000001", "id000031", "id000007"},
			n:        3,
			expected: []string{"id000032", "id000033", "id000034"},
		},
		{
			name:     "widens when numeral outgrows frame",
			existing: []string{"cl98", "cl99"},
			n:        2,
			expected: []string{"cl100", "cl101"},
		},
		{
			name:     "first value decides width",
			existing: []string{"id0005", "id000120"},
			n:        1,
			expected: []string{"id0121"},
		},
		{
			name:     "skips malformed values",
			existing: []string{"n/a", "id000010", "", "id-7"},
			n:        1,
			expected: []string{"id000011"},
		},
		{
			name:     "ignores values under another prefix",
			existing: []string{"id000010", "pe9999999"},
			n:        1,
			expected: []string{"id000011"},
		},
		{
			name:     "zero request",
			existing: []string{"id000010"},
			n:        0,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.existing, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNext_Properties(t *testing.T) {
	existing := []string{"id000100", "id004711", "id000002"}
	const n = 50

	got, err := Next(existing, n)
	require.NoError(t, err)
	require.Len(t, got, n)

	seen := make(map[string]struct{})
	previous := 4711
	for _, code := range got {
		_, numeral, ok := Parse(code)
		require.True(t, ok, code)
		assert.Greater(t, numeral, previous)
		assert.Len(t, code, len("id000000"))
		_, dup := seen[code]
		assert.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
		previous = numeral
	}
}

func TestNext_Malformed(t *testing.T) {
	for _, existing := range [][]string{nil, {}, {"", "abc", "123"}} {
		_, err := Next(existing, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedIdentifier))
	}
}

func TestFrameFormat(t *testing.T) {
	f := Frame{Prefix: "id", Width: 6}
	assert.Equal(t, "id000045", f.Format(45))
	assert.Equal(t, "id1234567", f.Format(1234567))
}
