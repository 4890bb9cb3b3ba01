package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	citizenID := NewCitizenID()
	parsed, err := ParseCitizenID(citizenID.String())
	require.NoError(t, err)
	assert.Equal(t, citizenID, parsed)
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "not-a-uuid", "123"} {
		_, err := ParseRequestID(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestIsNil(t *testing.T) {
	var zero DocumentID
	assert.True(t, zero.IsNil())
	assert.False(t, NewDocumentID().IsNil())
}
