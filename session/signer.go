package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// signingKeyLength is the size of the per-process cookie signing key.
const signingKeyLength = 32

var ErrInvalidCookie = errors.New("invalid session cookie")

// Signer signs and verifies session IDs carried in browser cookies. The key
// is generated fresh at process start, so cookies from a previous run are
// rejected and every session starts over.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer with a random key.
func NewSigner() (*Signer, error) {
	key := make([]byte, signingKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &Signer{key: key}, nil
}

// Encode produces the cookie value for a session ID: the ID followed by its
// HMAC-SHA256 tag, both base64url.
func (s *Signer) Encode(sessionID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(sessionID)) + "." + s.sign(sessionID)
}

// Decode verifies a cookie value and returns the session ID it carries.
func (s *Signer) Decode(value string) (string, error) {
	encodedID, tag, found := strings.Cut(value, ".")
	if !found {
		return "", ErrInvalidCookie
	}
	idBytes, err := base64.RawURLEncoding.DecodeString(encodedID)
	if err != nil {
		return "", ErrInvalidCookie
	}
	sessionID := string(idBytes)
	if !hmac.Equal([]byte(tag), []byte(s.sign(sessionID))) {
		return "", ErrInvalidCookie
	}
	return sessionID, nil
}

func (s *Signer) sign(sessionID string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
