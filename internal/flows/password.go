package flows

import (
	"regexp"
	"strings"

	"lobbyctl/pkg/pkce"
)

const (
	// MinPasswordLength is advisory; the service enforces its own minimum.
	MinPasswordLength = 8
	MaxPasswordLength = 64

	MinUsernameLength = 3
	MaxUsernameLength = 15
	MinTaglineLength  = 2
	MaxTaglineLength  = 5

	taglineAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	hasLetter  = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[ ` + "`" + `!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?~]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
)

var strengthLabels = []string{"weak", "weak", "notStrong", "moderate", "moderate", "good", "strong"}

// PasswordStrength scores a password for the strength meter. The score is
// cosmetic; only the minimum length gates submission.
func PasswordStrength(password string) int {
	score := 0
	if len(password) >= MinPasswordLength {
		score++
	}
	if len(password) >= 16 {
		score += 2
	}

	kinds := 0
	letters := hasLetter.MatchString(password)
	if letters {
		kinds++
	}
	if hasDigit.MatchString(password) {
		kinds++
	}
	if hasSpecial.MatchString(password) {
		kinds++
	}
	if kinds >= 2 {
		score++
	}
	if kinds == 3 {
		score++
	}
	if letters && hasLower.MatchString(password) && hasUpper.MatchString(password) {
		score++
	}
	return score
}

// StrengthLabel names a PasswordStrength score. Scores past the table are
// "strong".
func StrengthLabel(score int) string {
	switch {
	case score < 0:
		return strengthLabels[0]
	case score >= len(strengthLabels):
		return strengthLabels[len(strengthLabels)-1]
	}
	return strengthLabels[score]
}

// GenerateTagline returns a random tagline of uppercase letters.
func GenerateTagline() (string, error) {
	return pkce.RandomString(MaxTaglineLength, taglineAlphabet)
}

// FullName joins a username and tagline the way the lobby stores them.
func FullName(username, tagline string) string {
	return username + "#" + strings.ToUpper(tagline)
}
