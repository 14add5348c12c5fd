package oauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// expirySkew is subtracted from the expiry when deciding whether credentials
// are still usable, so a token is refreshed before it lapses mid-request.
const expirySkew = 30 * time.Second

// Credentials is the access/refresh token pair issued by a successful
// exchange. One set exists per browser session. Tokens must never be logged
// or rendered in responses.
type Credentials struct {
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Valid reports whether the access token can still be used.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && time.Now().Add(expirySkew).Before(c.Expiry)
}

// Token converts the credentials to an oauth2 token for use with
// oauth2-aware HTTP clients.
func (c Credentials) Token() *oauth2.Token {
	return &oauth2.Token{
		TokenType:    c.TokenType,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// Subject returns the subject claim of the access token, for display only.
// The token is parsed without signature verification; the empty string is
// returned when the token is not a JWT or carries no subject.
func (c Credentials) Subject() string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func credentialsFromToken(tok *oauth2.Token) Credentials {
	return Credentials{
		TokenType:    tok.TokenType,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}
