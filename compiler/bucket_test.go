package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-aa/manifest-compiler/compiler"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"aa_0", "0000"},
		{"aa_999", "0000"},
		{"aa_1000", "1000"},
		{"aa_1999", "1000"},
		{"aa_2500", "2000"},
		{"aa_3988", "3000"},
		{"aa_4000", "4000"},
		{"aa_4999", "4000"},
		{"aa_5000", "5000"},
		{"aa_123456", "5000"},
		{"prefix_with_parts_42", "0000"},
		{"1234", "1000"},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			got, err := compiler.Bucket(tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBucketRejectsNonNumeric(t *testing.T) {
	for _, id := range []string{"aa_", "aa_x12", "painter", "aa_-5"} {
		_, err := compiler.Bucket(id)
		assert.ErrorIs(t, err, compiler.ErrBadIdentifier, id)
	}
}

func TestManifestKey(t *testing.T) {
	key, err := compiler.ManifestKey("aa_3988")
	require.NoError(t, err)
	assert.Equal(t, "3000/aa_3988.json", key)
}
