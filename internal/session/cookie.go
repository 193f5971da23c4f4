package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	// CookieName is used when cookies are Secure; the __Host- prefix pins
	// the cookie to the backend host and path "/".
	CookieName = "__Host-session"

	// InsecureCookieName is used for plain-http development setups, where
	// browsers reject __Host- cookies.
	InsecureCookieName = "session"
)

// NameFor returns the session cookie name for the given Secure flag.
func NameFor(secure bool) string {
	if secure {
		return CookieName
	}
	return InsecureCookieName
}

// CookieOptions defines how cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true // secure default
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SignedCookie issues and reads a single HMAC-signed cookie. Values that
// fail verification read back as empty.
type SignedCookie struct {
	name  string
	codec *securecookie.SecureCookie
	opts  CookieOptions
}

// NewSignedCookie signs values with secret. maxAge bounds how old a
// signed value may be when read back.
func NewSignedCookie(name string, secret []byte, maxAge time.Duration, opts CookieOptions) *SignedCookie {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(int(maxAge.Seconds()))
	codec.SetSerializer(securecookie.NopEncoder{})

	return &SignedCookie{
		name:  name,
		codec: codec,
		opts:  opts.normalize(),
	}
}

func (c *SignedCookie) Name() string {
	return c.name
}

func (c *SignedCookie) Options() CookieOptions {
	return c.opts
}

// Set writes value to the client, expiring at expiresAt.
func (c *SignedCookie) Set(w http.ResponseWriter, value string, expiresAt time.Time) error {
	encoded, err := c.codec.Encode(c.name, []byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		Expires:  expiresAt,
		MaxAge:   maxAgeUntil(expiresAt),
		HttpOnly: c.opts.HttpOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
	return nil
}

// Read returns the verified value, or "" when the cookie is missing,
// tampered with, or too old.
func (c *SignedCookie) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return ""
	}

	var raw []byte
	if err := c.codec.Decode(c.name, cookie.Value, &raw); err != nil {
		return ""
	}
	return string(raw)
}

// Clear removes the cookie from the client.
func (c *SignedCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   -1,
		HttpOnly: c.opts.HttpOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
}

func maxAgeUntil(t time.Time) int {
	secs := int(time.Until(t).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}
