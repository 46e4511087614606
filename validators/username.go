package validators

import (
	"errors"
	"unicode/utf8"
)

var (
	ErrUsernameEmpty    = errors.New("no username provided")
	ErrUsernameTooShort = errors.New("username must be at least 2 characters long")
	ErrUsernameTooLong  = errors.New("username can't be longer than 20 characters")
)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	n := utf8.RuneCountInString(u)

	if n < 2 {
		return ErrUsernameTooShort
	}

	if n > 20 {
		return ErrUsernameTooLong
	}

	return nil
}
