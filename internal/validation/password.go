package validation

import (
	"regexp"
	"strings"
)

// Password policy bounds.
const (
	MinPasswordLen = 8
	// MaxEmailSimilarity is the highest allowed similarity ratio between a
	// password and the account email.
	MaxEmailSimilarity = 0.7
)

// Password policy messages.
const (
	MsgPasswordTooShort  = "password must be at least 8 characters"
	MsgPasswordNoDigit   = "password must contain at least one digit, 0-9"
	MsgPasswordNoUpper   = "password must contain at least one uppercase letter, A-Z"
	MsgPasswordNoLower   = "password must contain at least one lowercase letter, a-z"
	MsgPasswordNotASCII  = "password must contain only ASCII characters"
	MsgPasswordNumeric   = "password cannot be entirely numeric"
	MsgPasswordCommon    = "password is too common"
	MsgPasswordLikeEmail = "password is too similar to the email"
)

var (
	digitRe   = regexp.MustCompile(`\d`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	numericRe = regexp.MustCompile(`^\d+$`)
)

// commonPasswords is a short deny-list of passwords that pass the character
// class checks but are still trivially guessable.
var commonPasswords = map[string]struct{}{
	"password1!": {}, "passw0rd": {}, "password123": {},
	"qwerty123": {}, "qwertyuiop1": {}, "letmein123": {},
	"welcome1": {}, "admin123": {}, "iloveyou1": {},
	"football1": {}, "monkey123": {}, "dragon123": {},
}

// Password validates a password against the full policy: length, character
// classes, ASCII charset, deny-list and similarity to the email.
func Password(password, email string) []string {
	var msgs []string
	if len(password) < MinPasswordLen {
		msgs = append(msgs, MsgPasswordTooShort)
	}
	for _, r := range password {
		if r > 127 {
			msgs = append(msgs, MsgPasswordNotASCII)
			break
		}
	}
	if !digitRe.MatchString(password) {
		msgs = append(msgs, MsgPasswordNoDigit)
	}
	if !upperRe.MatchString(password) {
		msgs = append(msgs, MsgPasswordNoUpper)
	}
	if !lowerRe.MatchString(password) {
		msgs = append(msgs, MsgPasswordNoLower)
	}
	if numericRe.MatchString(password) {
		msgs = append(msgs, MsgPasswordNumeric)
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		msgs = append(msgs, MsgPasswordCommon)
	}
	if email != "" && similarity(strings.ToLower(password), strings.ToLower(email)) > MaxEmailSimilarity {
		msgs = append(msgs, MsgPasswordLikeEmail)
	}
	return msgs
}

// similarity returns an upper bound on the ratio of matching characters
// between a and b: 2*M/T where M counts characters common to both multisets
// and T is the total length. This mirrors a quick sequence-matcher ratio and
// is cheap enough to run on every registration.
func similarity(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	counts := map[rune]int{}
	for _, r := range b {
		counts[r]++
	}
	matches := 0
	for _, r := range a {
		if counts[r] > 0 {
			counts[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len([]rune(a))+len([]rune(b)))
}
