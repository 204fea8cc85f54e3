package credentials

// Bundle is the set of tokens representing an authenticated console session.
// The presence of a stored Bundle is the only authentication signal; no expiry
// is tracked locally.
type Bundle struct {
	// AccessToken is the primary bearer credential.
	// Usage: sent on every API request as "Authorization: Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// APIToken is the secondary token some backend routes expect.
	// Defaults to AccessToken when the login response omits it.
	APIToken string `json:"api_token,omitempty"`

	// RefreshToken is kept verbatim when the backend issues one.
	// Nothing in the console exchanges it.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Valid reports whether the bundle carries a usable primary token.
func (b *Bundle) Valid() bool {
	return b != nil && b.AccessToken != ""
}

// Clone returns a copy that shares nothing with b.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
