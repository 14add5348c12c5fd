package session_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/queryconsole/go-query-console/session"
)

func TestSigner(t *testing.T) {
	signer, err := session.NewSigner()
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		value := signer.Encode("session-123")
		id, err := signer.Decode(value)
		require.NoError(t, err)
		require.Equal(t, "session-123", id)
	})

	t.Run("tampered tag is rejected", func(t *testing.T) {
		value := signer.Encode("session-123")
		tampered := value[:len(value)-1] + flipChar(value[len(value)-1])
		_, err := signer.Decode(tampered)
		require.ErrorIs(t, err, session.ErrInvalidCookie)
	})

	t.Run("tampered session ID is rejected", func(t *testing.T) {
		value := signer.Encode("session-123")
		_, tag, found := strings.Cut(value, ".")
		require.True(t, found)

		other := signer.Encode("session-456")
		otherID, _, _ := strings.Cut(other, ".")
		_, err := signer.Decode(otherID + "." + tag)
		require.ErrorIs(t, err, session.ErrInvalidCookie)
	})

	t.Run("missing separator is rejected", func(t *testing.T) {
		_, err := signer.Decode("bogus")
		require.ErrorIs(t, err, session.ErrInvalidCookie)
	})

	t.Run("key is per process", func(t *testing.T) {
		otherSigner, err := session.NewSigner()
		require.NoError(t, err)

		_, err = otherSigner.Decode(signer.Encode("session-123"))
		require.ErrorIs(t, err, session.ErrInvalidCookie)
	})
}

func flipChar(c byte) string {
	if c == 'A' {
		return "B"
	}
	return "A"
}
