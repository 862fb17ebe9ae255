// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy describes the checks applied to new account passwords.
type PasswordPolicy struct {
	// MinLength is the minimum number of characters.
	MinLength int

	// ForbidNumeric rejects passwords made only of digits.
	ForbidNumeric bool

	// ForbidCommonPasswords rejects passwords from the common list.
	ForbidCommonPasswords bool

	// ForbidUserAttributeSimilarity rejects passwords resembling the username or email.
	ForbidUserAttributeSimilarity bool

	// MaxSimilarity is the similarity ratio (0..1) at or above which a
	// password counts as too similar to a user attribute.
	MaxSimilarity float64
}

// DefaultPasswordPolicy returns the policy applied to accounts.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                     8,
		ForbidNumeric:                 true,
		ForbidCommonPasswords:         true,
		ForbidUserAttributeSimilarity: true,
		MaxSimilarity:                 0.7,
	}
}

// PasswordValidationResult lists every failed rule.
type PasswordValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate runs all rules. Attributes are the username, email and names of
// the account the password belongs to; empty values are ignored.
func (p PasswordPolicy) Validate(password string, attributes ...string) PasswordValidationResult {
	result := PasswordValidationResult{Valid: true, Errors: make([]string, 0)}
	fail := func(msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	if p.ForbidUserAttributeSimilarity {
		for _, attr := range attributes {
			if attr != "" && isSimilarToAttribute(password, attr, p.MaxSimilarity) {
				fail("The password is too similar to the user attributes.")
				break
			}
		}
	}
	if len([]rune(password)) < p.MinLength {
		fail(fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		fail("This password is too common.")
	}
	if p.ForbidNumeric && password != "" && isNumeric(password) {
		fail("This password is entirely numeric.")
	}
	return result
}

// ValidateWithError joins the rule failures into a single error.
func (p PasswordPolicy) ValidateWithError(password string, attributes ...string) error {
	result := p.Validate(password, attributes...)
	if !result.Valid {
		return errors.New(strings.Join(result.Errors, " "))
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isSimilarToAttribute compares the password with the attribute and with each
// part of it split on non-alphanumerics (so "jane.doe@example.com" also checks
// "jane", "doe", "example" and "com").
func isSimilarToAttribute(password, attribute string, maxSimilarity float64) bool {
	lowerPass := strings.ToLower(password)
	lowerAttr := strings.ToLower(attribute)

	parts := strings.FieldsFunc(lowerAttr, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	parts = append(parts, lowerAttr)

	for _, part := range parts {
		if len(part) < 3 {
			continue
		}
		if similarityRatio(lowerPass, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// similarityRatio returns 2*M/T where M is the length of the longest common
// subsequence of a and b and T is their combined length.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return 2 * float64(prev[len(rb)]) / float64(total)
}

var commonPasswords = map[string]bool{
	"1234":        true,
	"123456":      true,
	"password":    true,
	"123456789":   true,
	"12345678":    true,
	"12345":       true,
	"1234567":     true,
	"1234567890":  true,
	"qwerty":      true,
	"qwertyuiop":  true,
	"abc123":      true,
	"password1":   true,
	"password123": true,
	"admin":       true,
	"admin123":    true,
	"letmein":     true,
	"welcome":     true,
	"welcome1":    true,
	"monkey":      true,
	"dragon":      true,
	"master":      true,
	"login":       true,
	"princess":    true,
	"passw0rd":    true,
	"p@ssw0rd":    true,
	"iloveyou":    true,
	"sunshine":    true,
	"trustno1":    true,
	"111111":      true,
	"000000":      true,
	"11111111":    true,
	"00000000":    true,
	"654321":      true,
	"superman":    true,
	"football":    true,
	"baseball":    true,
	"shadow":      true,
	"secret":      true,
	"changeme":    true,
	"asdfghjkl":   true,
	"zxcvbnm":     true,
	"1q2w3e4r":    true,
	"abcd1234":    true,
	"987654321":   true,
	"123123":      true,
	"test123":     true,
	"familymap":   true,
	"playground":  true,
	"children":    true,
}

func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(strings.TrimSpace(password))]
}
