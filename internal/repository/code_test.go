package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPropertyCode(t *testing.T) {
	tests := []struct {
		latest string
		want   string
	}{
		{"", "DP00001"},
		{"DP00001", "DP00002"},
		{"DP00042", "DP00043"},
		{"DP00999", "DP01000"},
		{"DP99998", "DP99999"},
	}
	for _, tt := range tests {
		got, err := NextPropertyCode(tt.latest)
		require.NoError(t, err, tt.latest)
		assert.Equal(t, tt.want, got)
		assert.Len(t, got, 7)
	}
}

func TestNextPropertyCodeErrors(t *testing.T) {
	_, err := NextPropertyCode("DP99999")
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)

	_, err = NextPropertyCode("XX00001")
	assert.Error(t, err)

	_, err = NextPropertyCode("DP1")
	assert.Error(t, err)
}
