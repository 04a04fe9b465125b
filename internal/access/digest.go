package access

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// DefaultSiteKey is the placeholder key shipped with the docker image.
const DefaultSiteKey = "thisisnotasecret"

// DefaultStretches is the stock digest stretch count.
const DefaultStretches = 10

var ErrNoStretches = errors.New("digest stretches must be positive")

// DigestConfig is the shared secret and stretch count of the restful
// authentication scheme used by the BETY Rails application.
type DigestConfig struct {
	SiteKey   string `yaml:"REST_AUTH_SITE_KEY" json:"REST_AUTH_SITE_KEY" split_words:"true"`
	Stretches int    `yaml:"REST_AUTH_DIGEST_STRETCHES" json:"REST_AUTH_DIGEST_STRETCHES"`
}

func DefaultDigest() DigestConfig {
	return DigestConfig{SiteKey: DefaultSiteKey, Stretches: DefaultStretches}
}

func (d DigestConfig) IsDefaultSiteKey() bool {
	return d.SiteKey == DefaultSiteKey
}

// PasswordDigest stretches password and salt into the hex digest stored in
// the users table.
func (d DigestConfig) PasswordDigest(password, salt string) (string, error) {
	if d.Stretches <= 0 {
		return "", ErrNoStretches
	}
	digest := d.SiteKey
	for i := 0; i < d.Stretches; i++ {
		digest = secureDigest(digest, salt, password, d.SiteKey)
	}
	return digest, nil
}

// Verify reports whether password and salt produce digest.
func (d DigestConfig) Verify(password, salt, digest string) bool {
	got, err := d.PasswordDigest(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(digest))) == 1
}

func secureDigest(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "--")))
	return hex.EncodeToString(sum[:])
}
