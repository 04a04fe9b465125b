package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordDigest(t *testing.T) {
	cases := []struct {
		name      string
		stretches int
		want      string
	}{
		{"single", 1, "ff4a5ab649034f9607b6de7e9df8e097c8d7ce95"},
		{"stock", 10, "b247ebfed803f4ffefbd33b9b0c8803fe63805f8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := DigestConfig{SiteKey: DefaultSiteKey, Stretches: tc.stretches}
			got, err := d.PasswordDigest("carya", "c0ffee")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVerify(t *testing.T) {
	d := DefaultDigest()
	assert.True(t, d.Verify("carya", "c0ffee", "B247EBFED803F4FFEFBD33B9B0C8803FE63805F8"))
	assert.False(t, d.Verify("carya", "salt", "b247ebfed803f4ffefbd33b9b0c8803fe63805f8"))

	d.Stretches = 0
	_, err := d.PasswordDigest("carya", "c0ffee")
	assert.ErrorIs(t, err, ErrNoStretches)
	assert.False(t, d.Verify("carya", "c0ffee", "b247ebfed803f4ffefbd33b9b0c8803fe63805f8"))
}

func TestIsDefaultSiteKey(t *testing.T) {
	assert.True(t, DefaultDigest().IsDefaultSiteKey())
	assert.False(t, DigestConfig{SiteKey: "s3cr3t"}.IsDefaultSiteKey())
}
