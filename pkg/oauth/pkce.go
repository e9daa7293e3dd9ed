package oauth

import (
	"golang.org/x/oauth2"
)

// CodeChallengeMethodS256 is the only PKCE method this SDK sends.
const CodeChallengeMethodS256 = "S256"

// PKCEChallenge represents a PKCE (Proof Key for Code Exchange) pair.
// A public client without a client secret binds its authorization code to
// the verifier; the server checks it during code exchange.
type PKCEChallenge struct {
	// CodeVerifier is the high-entropy random string kept locally and sent
	// only to the token endpoint.
	CodeVerifier string

	// CodeChallenge is base64url(SHA256(CodeVerifier)) without padding.
	// It is sent in the authorization URL.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GeneratePKCE generates a new PKCE code verifier and its S256 challenge.
// The verifier is 32 random bytes, base64url-encoded (43 characters).
func GeneratePKCE() *PKCEChallenge {
	verifier, challenge := GeneratePKCERaw()
	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       challenge,
		CodeChallengeMethod: CodeChallengeMethodS256,
	}
}

// GeneratePKCERaw generates a PKCE code verifier and challenge as raw strings.
func GeneratePKCERaw() (verifier, challenge string) {
	verifier = oauth2.GenerateVerifier()
	return verifier, S256Challenge(verifier)
}

// S256Challenge computes the S256 code challenge for a verifier.
func S256Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
