package auth

// Identity is the public profile of an authenticated principal as reported
// by the identity provider. It is captured once at callback time and never
// refreshed or merged with local data.
type Identity struct {
	ID          string  `json:"id"`          // provider-scoped subject
	DisplayName string  `json:"displayName"` // human readable name
	Email       *string `json:"email"`       // nil when the provider withheld it
	AvatarURL   *string `json:"avatarUrl"`   // nil when the provider withheld it
	Provider    string  `json:"provider"`    // e.g. "google", "oidc"
}

// StringPtr returns nil for the empty string. Providers use it to map
// optional claims onto the nullable Identity fields.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
