package auth

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// GuestUsernamePrefix starts every provisioned guest username; the rest
	// is guestSuffixLength random alphanumeric characters.
	GuestUsernamePrefix = "Guest_"

	guestSuffixLength   = 8
	guestPasswordLength = 15

	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GuestCredentials is a generated throwaway identity. The password exists
// only long enough to be hashed; it is never returned to the caller of the
// guest endpoint and cannot be recovered afterwards.
type GuestCredentials struct {
	Username string
	Password string
}

// GuestGenerator produces guest credentials from an injected randomness
// source, so tests can feed a deterministic reader.
type GuestGenerator struct {
	rand io.Reader
}

// NewGuestGenerator creates a generator backed by crypto/rand.
func NewGuestGenerator() *GuestGenerator {
	return &GuestGenerator{rand: rand.Reader}
}

// NewGuestGeneratorWithSource creates a generator reading randomness from r.
func NewGuestGeneratorWithSource(r io.Reader) *GuestGenerator {
	return &GuestGenerator{rand: r}
}

// Generate returns a fresh Guest_XXXXXXXX username and a random password.
// Username collisions are not checked here; the probability is negligible
// (62^8 suffixes) and the database's unique constraint backstops it.
func (g *GuestGenerator) Generate() (GuestCredentials, error) {
	suffix, err := g.randomString(guestSuffixLength)
	if err != nil {
		return GuestCredentials{}, fmt.Errorf("auth: generating guest username: %w", err)
	}
	password, err := g.randomString(guestPasswordLength)
	if err != nil {
		return GuestCredentials{}, fmt.Errorf("auth: generating guest password: %w", err)
	}
	return GuestCredentials{
		Username: GuestUsernamePrefix + suffix,
		Password: password,
	}, nil
}

func (g *GuestGenerator) randomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(out), nil
}
