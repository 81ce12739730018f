package flows

import (
	"fmt"
	"strings"
)

// language reduces a locale such as "en-US" to its language.
func language(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	if lang == "" {
		return "en"
	}
	return lang
}

// TermsURL links the terms and conditions.
func TermsURL(locale string) string {
	return fmt.Sprintf("https://agb.traviangames.com/terms-%s.pdf", language(locale))
}

// WithdrawalURL links the information on the right of withdrawal.
func WithdrawalURL(locale string) string {
	return TermsURL(locale) + "#row"
}

// PrivacyURL links the privacy policy.
func PrivacyURL(locale string) string {
	return fmt.Sprintf("https://agb.traviangames.com/privacy-%s-TL.pdf", language(locale))
}

// GTLRulesURL links the gold transfer rules.
func GTLRulesURL(locale string) string {
	return fmt.Sprintf("https://support.travian.com/%s/support/solutions/articles/7000060364-gold-transfer", language(locale))
}
