package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cardwallet/internal/model"
)

// TokenSource issues and checks one-time email tokens (activation, password
// reset). The MAC covers the user's current password hash, so every token is
// invalidated by any later password change without server-side state.
type TokenSource struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenSource creates a token source with the given secret and max token age.
func NewTokenSource(secret string, maxAge time.Duration) *TokenSource {
	return &TokenSource{secret: []byte(secret), maxAge: maxAge}
}

// EncodeUID encodes a user ID for use in activation links.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID decodes an activation-link uid back to a user ID.
func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("decode uid: %w", err)
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse uid: %w", err)
	}
	return uint(id), nil
}

// MakeToken issues a token bound to the user's ID, email and current password hash.
func (s *TokenSource) MakeToken(user *model.User) string {
	ts := time.Now().Unix()
	return s.makeTokenAt(user, ts)
}

func (s *TokenSource) makeTokenAt(user *model.User, ts int64) string {
	mac := s.sign(user, ts)
	return strconv.FormatInt(ts, 36) + "-" + base64.RawURLEncoding.EncodeToString(mac)
}

// CheckToken reports whether token was issued for this user, with the user's
// current password hash, within the max age window.
func (s *TokenSource) CheckToken(user *model.User, token string) bool {
	tsPart, macPart, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	if time.Since(time.Unix(ts, 0)) > s.maxAge {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(macPart)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.sign(user, ts))
}

func (s *TokenSource) sign(user *model.User, ts int64) []byte {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%d:%s:%d:%s", user.ID, user.PasswordHash, ts, user.Email)
	return h.Sum(nil)
}
