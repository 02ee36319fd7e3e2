// Package token implements the stateless signed tokens used in
// email-verification and unsubscribe links. A token carries its subject
// and expiry, so verifying one needs no database lookup.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrNoSigningKey = errors.New("token signing key is not configured")

const KeySize = 32

var enc = base64.RawURLEncoding

// Codec issues and verifies HMAC-SHA256 signed tokens. It holds only
// the key and a clock, so it is safe for concurrent use.
type Codec struct {
	key []byte
	now func() time.Time
}

// New returns a codec signing with key. The key must be KeySize random
// bytes; issuing a token that could never verify is worse than failing
// here, so a missing or short key is rejected at construction.
func New(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, ErrNoSigningKey
	}
	return &Codec{key: key, now: time.Now}, nil
}

// NewWithClock is New with an injectable clock, for expiry tests.
func NewWithClock(key []byte, now func() time.Time) (*Codec, error) {
	c, err := New(key)
	if err != nil {
		return nil, err
	}
	c.now = now
	return c, nil
}

// Issue returns a token binding subjectID for ttl. The wire format is
// base64url(subjectID + "." + expiresAtMillis) + "." + base64url(sig),
// unpadded. Subject IDs are UUIDs here, so the inner dot separator is
// unambiguous; Verify still splits on the last dot to tolerate dotted
// subjects.
func (c *Codec) Issue(subjectID string, ttl time.Duration) (string, error) {
	if len(c.key) == 0 {
		return "", ErrNoSigningKey
	}

	expiresAt := c.now().Add(ttl).UnixMilli()
	payload := enc.EncodeToString([]byte(subjectID + "." + strconv.FormatInt(expiresAt, 10)))
	return payload + "." + c.sign(payload), nil
}

// Verify checks the token's signature and expiry. Malformed input, a
// bad signature, an expired token and a missing key all uniformly
// report ok=false; callers must not learn why a token was rejected.
func (c *Codec) Verify(tok string) (subjectID string, expiresAt time.Time, ok bool) {
	if len(c.key) == 0 {
		return "", time.Time{}, false
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return "", time.Time{}, false
	}

	if !hmac.Equal([]byte(c.sign(parts[0])), []byte(parts[1])) {
		return "", time.Time{}, false
	}

	raw, err := enc.DecodeString(parts[0])
	if err != nil {
		return "", time.Time{}, false
	}
	payload := string(raw)

	// Split on the last dot: the subject may contain dots, the expiry
	// never does.
	sep := strings.LastIndex(payload, ".")
	if sep < 0 {
		return "", time.Time{}, false
	}

	millis, err := strconv.ParseInt(payload[sep+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}

	exp := time.UnixMilli(millis)
	if c.now().After(exp) {
		return "", time.Time{}, false
	}

	return payload[:sep], exp, true
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(payload))
	return enc.EncodeToString(mac.Sum(nil))
}
