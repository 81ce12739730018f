package flows

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// ValidateEmail checks an address the way the email forms do and returns
// the message key for the first problem, or "".
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return MsgEnterEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return MsgInvalidEmail
	}
	return ""
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}
