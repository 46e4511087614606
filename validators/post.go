package validators

import (
	"errors"
	"strings"
)

var (
	ErrTitleEmpty   = errors.New("title can't be empty")
	ErrTitleTooLong = errors.New("title can't be longer than 100 characters")
	ErrContentEmpty = errors.New("content can't be empty")
)

func PostValidator(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}

	if len(title) > 100 {
		return ErrTitleTooLong
	}

	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}

	return nil
}
