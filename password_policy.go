package docauth

import (
	"strings"
	"unicode"
)

// PolicyContext carries the user attributes a password is checked
// against: a password must not contain fragments of the user's own
// email or name.
type PolicyContext struct {
	Email    string
	FullName string
}

// StrengthReport is the outcome of a strength validation. A password is
// accepted only when zero violations remain.
type StrengthReport struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// PasswordPolicy scores candidate passwords. Validation is a pure
// function of the password and its context.
type PasswordPolicy struct {
	MinLength int
	// ForbiddenTerms are organization-specific words banned outright.
	ForbiddenTerms []string
}

// Substrings any password containing them is rejected for.
var commonWeakTerms = []string{
	"password",
	"passwort",
	"12345",
	"qwerty",
	"abc123",
	"letmein",
	"welcome",
	"admin",
}

// DefaultPasswordPolicy bans the portal's own vocabulary on top of the
// common weak terms.
func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		MinLength: 8,
		ForbiddenTerms: []string{
			"portal",
			"archive",
			"document",
			"secretariat",
		},
	}
}

// Validate scores the password. Every failed check adds one violation;
// the report is valid only with zero violations.
func (p *PasswordPolicy) Validate(password string, pctx PolicyContext) StrengthReport {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = 8
	}

	var violations []string

	if len(password) < minLength {
		violations = append(violations, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasUpper {
		violations = append(violations, "password must contain an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "password must contain a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "password must contain a digit")
	}
	if !hasSymbol {
		violations = append(violations, "password must contain a symbol")
	}

	lowered := strings.ToLower(password)

	for _, term := range commonWeakTerms {
		if strings.Contains(lowered, term) {
			violations = append(violations, "password contains a commonly used weak term")
			break
		}
	}

	for _, term := range p.ForbiddenTerms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			violations = append(violations, "password contains a forbidden term")
			break
		}
	}

	if fragmentOf(lowered, emailLocalPart(pctx.Email)) {
		violations = append(violations, "password must not contain parts of your email address")
	}

	if fragmentOf(lowered, pctx.FullName) {
		violations = append(violations, "password must not contain parts of your name")
	}

	return StrengthReport{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}

func emailLocalPart(email string) string {
	email = NormalizeEmail(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// fragmentOf reports whether any alphanumeric fragment of source longer
// than 2 characters appears in the lower-cased password.
func fragmentOf(loweredPassword, source string) bool {
	if source == "" {
		return false
	}

	fragments := strings.FieldsFunc(strings.ToLower(source), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, fragment := range fragments {
		if len(fragment) <= 2 {
			continue
		}
		if strings.Contains(loweredPassword, fragment) {
			return true
		}
	}

	return false
}
