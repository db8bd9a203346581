package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~` + "`" + `]`)

	// Frequently compromised passwords rejected regardless of strength score.
	commonPasswords = map[string]bool{
		"password":    true,
		"password1":   true,
		"password123": true,
		"123456":      true,
		"12345678":    true,
		"123456789":   true,
		"1234567890":  true,
		"qwerty":      true,
		"qwerty123":   true,
		"abc123":      true,
		"letmein":     true,
		"welcome":     true,
		"iloveyou":    true,
		"admin":       true,
		"admin123":    true,
		"root":        true,
		"guest":       true,
		"test":        true,
		"master":      true,
		"secret":      true,
		"trustno1":    true,
		"dragon":      true,
		"monkey":      true,
		"sunshine":    true,
		"princess":    true,
		"football":    true,
	}
)

// PasswordStrengthConfig defines password strength requirements.
type PasswordStrengthConfig struct {
	MinLength        int
	MaxLength        int
	MinCharClasses   int // of: uppercase, lowercase, digits, special
	RequireUppercase bool
	RequireLowercase bool
	RequireDigits    bool
	RequireSpecial   bool
}

// DefaultPasswordStrength requires 8-128 characters from at least two
// character classes. Two classes keeps UX reasonable while the blocklist
// catches the worst offenders.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      128,
		MinCharClasses: 2,
	}
}

// StrongPassword validates the password against the strength configuration.
func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < config.MinLength || len(value) > config.MaxLength {
				return false
			}

			charClasses := 0
			hasUpper := uppercaseRegex.MatchString(value)
			hasLower := lowercaseRegex.MatchString(value)
			hasDigit := digitRegex.MatchString(value)
			hasSpecial := specialCharRegex.MatchString(value)

			if hasUpper {
				charClasses++
			}
			if hasLower {
				charClasses++
			}
			if hasDigit {
				charClasses++
			}
			if hasSpecial {
				charClasses++
			}

			if config.RequireUppercase && !hasUpper {
				return false
			}
			if config.RequireLowercase && !hasLower {
				return false
			}
			if config.RequireDigits && !hasDigit {
				return false
			}
			if config.RequireSpecial && !hasSpecial {
				return false
			}

			return charClasses >= config.MinCharClasses
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("password must be %d-%d characters with required character types", config.MinLength, config.MaxLength),
		},
	}
}

// NotCommonPassword rejects passwords from the common-password blocklist.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool { return !commonPasswords[strings.ToLower(value)] },
		Error: ValidationError{Field: field, Message: "password is too common"},
	}
}
