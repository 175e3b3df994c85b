package utils

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const minPasswordLength = 8

var validate = validator.New()

// IsValidEmail accepts a bare address whose domain has at least one dot.
func IsValidEmail(email string) bool {
	if err := validate.Var(email, "required,email"); err != nil {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// PasswordIssues lists what password is missing, in a stable order. An empty
// result means the password is acceptable.
func PasswordIssues(password string) []string {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	var issues []string
	if len([]rune(password)) < minPasswordLength {
		issues = append(issues, "at least 8 characters")
	}
	if !upper {
		issues = append(issues, "an upper case letter")
	}
	if !lower {
		issues = append(issues, "a lower case letter")
	}
	if !digit {
		issues = append(issues, "a number")
	}
	if !symbol {
		issues = append(issues, "a symbol")
	}
	return issues
}

func IsComplexPassword(password string) bool {
	return len(PasswordIssues(password)) == 0
}

// PasswordHint turns PasswordIssues into a sentence for the client.
func PasswordHint(password string) string {
	issues := PasswordIssues(password)
	if len(issues) == 0 {
		return ""
	}
	return "Password needs " + strings.Join(issues, ", ") + "."
}
