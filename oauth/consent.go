package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// verifierLength is the number of random bytes backing a PKCE code verifier.
// 32 bytes encode to a 43-character base64url string (RFC 7636 minimum is 43).
const verifierLength = 32

// stateLength is the number of random bytes backing the CSRF state token.
const stateLength = 32

// Consent is the per-login record of an in-flight authorization attempt.
// The verifier is a secret and is sent only to the token endpoint; the
// challenge is its S256 derivation and goes into the authorization URL.
// A consent is consumed exactly once by the callback exchange.
type Consent struct {
	Verifier  string    `json:"verifier"`
	Challenge string    `json:"challenge"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// NewConsent generates a fresh verifier/challenge pair and an independent
// state token for one login attempt.
func NewConsent() (Consent, error) {
	verifier, err := randomToken(verifierLength)
	if err != nil {
		return Consent{}, err
	}
	state, err := randomToken(stateLength)
	if err != nil {
		return Consent{}, err
	}
	return Consent{
		Verifier:  verifier,
		Challenge: CodeChallenge(verifier),
		State:     state,
		CreatedAt: time.Now(),
	}, nil
}

// CodeChallenge computes the S256 code challenge for a verifier,
// BASE64URL(SHA256(ASCII(verifier))) per RFC 7636.
func CodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func randomToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropySource, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
