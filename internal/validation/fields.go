package validation

import (
	"regexp"

	"cardwallet/internal/errors"
)

// Field length limits.
const (
	MaxCardNameLen      = 30
	MaxShopNameLen      = 30
	MaxUserNameLen      = 30
	MaxGroupNameLen     = 20
	MaxCardNumberLen    = 40
	MaxBarcodeNumberLen = 256
	PhoneNumberLen      = 10
)

// Validation messages. Kept in one place so handlers and tests agree on wording.
const (
	MsgRequired          = "required field"
	MsgNameTooLong       = "name is too long"
	MsgNameCharset       = "name may contain only letters, digits, spaces and punctuation"
	MsgColorFormat       = "color must look like #AABBCC or #ABC"
	MsgCardNumberCharset = "card number may contain only letters, digits, spaces, dashes and underscores"
	MsgBarcodeCharset    = "barcode number may contain only letters, digits, spaces, dashes and underscores"
	MsgNumberTooLong     = "number is too long"
	MsgNoCardIdentifier  = "card number and/or barcode number must be set"
	MsgEmailCyrillic     = "email must not contain Cyrillic characters"
	MsgPhoneFormat       = "phone number must be 10 digits after the country code"
	MsgUnknownEncoding   = "unknown encoding type"
)

var (
	nameRe     = regexp.MustCompile(`^[0-9A-Za-zА-Яа-яЁё\s&\-_.,'"!№()+]+$`)
	colorRe    = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	numberRe   = regexp.MustCompile(`^[0-9A-Za-zА-Яа-я _-]+$`)
	cyrillicRe = regexp.MustCompile(`[А-Яа-яЁё]`)
	phoneRe    = regexp.MustCompile(`^\d{10}$`)
)

// Name validates a display name (card or shop) against the shared mask.
func Name(value string, maxLen int) []string {
	var msgs []string
	if value == "" {
		return []string{MsgRequired}
	}
	if len([]rune(value)) > maxLen {
		msgs = append(msgs, MsgNameTooLong)
	}
	if !nameRe.MatchString(value) {
		msgs = append(msgs, MsgNameCharset)
	}
	return msgs
}

// Color validates a #RGB or #RRGGBB hex color. Empty is allowed.
func Color(value string) []string {
	if value == "" {
		return nil
	}
	if !colorRe.MatchString(value) {
		return []string{MsgColorFormat}
	}
	return nil
}

// CardNumber validates an optional card number.
func CardNumber(value string) []string {
	return identifier(value, MaxCardNumberLen, MsgCardNumberCharset)
}

// BarcodeNumber validates an optional barcode number.
func BarcodeNumber(value string) []string {
	return identifier(value, MaxBarcodeNumberLen, MsgBarcodeCharset)
}

func identifier(value string, maxLen int, charsetMsg string) []string {
	if value == "" {
		return nil
	}
	var msgs []string
	if len([]rune(value)) > maxLen {
		msgs = append(msgs, MsgNumberTooLong)
	}
	if !numberRe.MatchString(value) {
		msgs = append(msgs, charsetMsg)
	}
	return msgs
}

// Email rejects addresses containing Cyrillic characters. Shape validation is
// handled by the request binding layer.
func Email(value string) []string {
	if value == "" {
		return []string{MsgRequired}
	}
	if cyrillicRe.MatchString(value) {
		return []string{MsgEmailCyrillic}
	}
	return nil
}

// Phone validates a 10-digit subscriber number.
func Phone(value string) []string {
	if value == "" {
		return []string{MsgRequired}
	}
	if !phoneRe.MatchString(value) {
		return []string{MsgPhoneFormat}
	}
	return nil
}

// CollectFieldErrors builds a FieldErrors map from per-field message slices,
// skipping clean fields.
func CollectFieldErrors(fields map[string][]string) errors.FieldErrors {
	fe := errors.FieldErrors{}
	for field, msgs := range fields {
		if len(msgs) > 0 {
			fe[field] = msgs
		}
	}
	return fe
}
