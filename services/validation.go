package services

import (
	"regexp"
	"strings"
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	reservedUsernames = map[string]bool{
		"admin": true, "root": true, "api": true, "www": true, "mail": true, "ftp": true,
		"test": true, "demo": true, "user": true, "guest": true, "null": true, "undefined": true,
	}
	validGenders = map[string]bool{"": true, "male": true, "female": true, "other": true}
)

// ValidateUsername checks length, charset and reserved words.
func ValidateUsername(username string) error {
	switch {
	case len(username) < 3:
		return BadRequest("username must be at least 3 characters long")
	case len(username) > 20:
		return BadRequest("username must be no more than 20 characters long")
	case !usernamePattern.MatchString(username):
		return BadRequest("username must start with a letter and contain only letters, numbers, and underscores")
	case reservedUsernames[strings.ToLower(username)]:
		return BadRequest("this username is reserved and cannot be used")
	}
	return nil
}

func validateGender(gender string) error {
	if !validGenders[gender] {
		return BadRequest("gender must be male, female or other")
	}
	return nil
}
