package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{name: "plain latin name", value: "Grocery card"},
		{name: "cyrillic name", value: "Продуктовая карта"},
		{name: "punctuation allowed", value: "M&S 'Food', №1!"},
		{name: "empty", value: "", wantMsg: MsgRequired},
		{name: "too long", value: strings.Repeat("a", MaxCardNameLen+1), wantMsg: MsgNameTooLong},
		{name: "forbidden character", value: "card <script>", wantMsg: MsgNameCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := Name(tt.value, MaxCardNameLen)
			if tt.wantMsg == "" {
				assert.Empty(t, msgs)
			} else {
				assert.Contains(t, msgs, tt.wantMsg)
			}
		})
	}
}

func TestColor(t *testing.T) {
	assert.Empty(t, Color(""))
	assert.Empty(t, Color("#2E7D32"))
	assert.Empty(t, Color("#abc"))
	assert.Contains(t, Color("2E7D32"), MsgColorFormat)
	assert.Contains(t, Color("#2E7D3"), MsgColorFormat)
	assert.Contains(t, Color("#GGGGGG"), MsgColorFormat)
}

func TestCardNumber(t *testing.T) {
	assert.Empty(t, CardNumber(""))
	assert.Empty(t, CardNumber("1234 5678-90_AB"))
	assert.Contains(t, CardNumber("12#34"), MsgCardNumberCharset)
	assert.Contains(t, CardNumber(strings.Repeat("1", MaxCardNumberLen+1)), MsgNumberTooLong)
}

func TestBarcodeNumber(t *testing.T) {
	assert.Empty(t, BarcodeNumber("4600000000001"))
	assert.Contains(t, BarcodeNumber(strings.Repeat("1", MaxBarcodeNumberLen+1)), MsgNumberTooLong)
}

func TestEmail(t *testing.T) {
	assert.Empty(t, Email("user@example.com"))
	assert.Contains(t, Email(""), MsgRequired)
	assert.Contains(t, Email("почта@example.com"), MsgEmailCyrillic)
}

func TestPhone(t *testing.T) {
	assert.Empty(t, Phone("5551234567"))
	assert.Contains(t, Phone(""), MsgRequired)
	assert.Contains(t, Phone("555123"), MsgPhoneFormat)
	assert.Contains(t, Phone("555123456a"), MsgPhoneFormat)
	assert.Contains(t, Phone("55512345678"), MsgPhoneFormat)
}

func TestCollectFieldErrors(t *testing.T) {
	fe := CollectFieldErrors(map[string][]string{
		"name":  {MsgRequired},
		"email": nil,
	})
	assert.Contains(t, fe, "name")
	assert.NotContains(t, fe, "email")
	assert.False(t, fe.Empty())
}
