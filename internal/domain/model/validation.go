package model

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted for sharing.
const MinPasswordLength = 4

var (
	// ErrInvalidSSID is reported by Validate for a name that fails ValidSSID.
	ErrInvalidSSID = errors.New("ssid must be 2-32 characters and must not contain ! # ; + ] / \" or tab")
	// ErrInvalidPassword is reported by Validate for a password that fails ValidPassword.
	ErrInvalidPassword = errors.New("password must be at least 4 characters")
)

// ssidPattern is matched rune-wise by the regexp package, so the length bound
// counts characters rather than bytes.
var ssidPattern = regexp.MustCompile(`^[^!#;+\]/"\t]{2,32}$`)

// ValidSSID reports whether s is valid UTF-8, 2 to 32 characters long, and
// contains none of the characters ! # ; + ] / " or tab.
func ValidSSID(s string) bool {
	return utf8.ValidString(s) && ssidPattern.MatchString(s)
}

// ValidPassword reports whether the password is valid UTF-8 and at least
// MinPasswordLength characters long.
func ValidPassword(password string) bool {
	return utf8.ValidString(password) && utf8.RuneCountInString(password) >= MinPasswordLength
}
