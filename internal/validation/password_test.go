package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		wantMsgs []string
	}{
		{name: "strong password passes", password: "Str0ngPass!", email: "user@example.com"},
		{name: "too short", password: "Ab1", wantMsgs: []string{MsgPasswordTooShort}},
		{name: "no digit", password: "NoDigitsHere", wantMsgs: []string{MsgPasswordNoDigit}},
		{name: "no uppercase", password: "alllower1", wantMsgs: []string{MsgPasswordNoUpper}},
		{name: "no lowercase", password: "ALLUPPER1", wantMsgs: []string{MsgPasswordNoLower}},
		{
			name:     "entirely numeric",
			password: "1234567890",
			wantMsgs: []string{MsgPasswordNumeric, MsgPasswordNoUpper, MsgPasswordNoLower},
		},
		{name: "non-ascii characters", password: "Пароль123ABc", wantMsgs: []string{MsgPasswordNotASCII}},
		{name: "common password", password: "Password123", wantMsgs: []string{MsgPasswordCommon}},
		{
			name:     "too similar to email",
			password: "User.example1A",
			email:    "user.example1@a.io",
			wantMsgs: []string{MsgPasswordLikeEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := Password(tt.password, tt.email)
			if len(tt.wantMsgs) == 0 {
				assert.Empty(t, msgs)
			}
			for _, want := range tt.wantMsgs {
				assert.Contains(t, msgs, want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
	assert.Equal(t, 0.0, similarity("", ""))
	assert.Greater(t, similarity("user@example.com", "user@example.org"), MaxEmailSimilarity)
	assert.Less(t, similarity("Tr1cky!Pass", "someone@shop.ru"), MaxEmailSimilarity)
}
