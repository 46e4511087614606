package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("a@x.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator(strings.Repeat("a", 120)+"@x.com"), ErrEmailTooLong)
}

func TestUsernameValidator(t *testing.T) {
	assert.NoError(t, UsernameValidator("al"))
	assert.NoError(t, UsernameValidator("alice"))
	assert.ErrorIs(t, UsernameValidator(""), ErrUsernameEmpty)
	assert.ErrorIs(t, UsernameValidator("a"), ErrUsernameTooShort)
	assert.ErrorIs(t, UsernameValidator(strings.Repeat("a", 21)), ErrUsernameTooLong)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("longenough"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

func TestConfirmedPasswordValidator(t *testing.T) {
	assert.NoError(t, ConfirmedPasswordValidator("longenough", "longenough"))
	assert.ErrorIs(t, ConfirmedPasswordValidator("longenough", "different1"), ErrPasswordMismatch)
	assert.ErrorIs(t, ConfirmedPasswordValidator("short", "short"), ErrPasswordTooShort)
}

func TestPostValidator(t *testing.T) {
	assert.NoError(t, PostValidator("Hello", "World"))
	assert.ErrorIs(t, PostValidator("  ", "World"), ErrTitleEmpty)
	assert.ErrorIs(t, PostValidator("Hello", "\t\n"), ErrContentEmpty)
	assert.ErrorIs(t, PostValidator(strings.Repeat("a", 101), "World"), ErrTitleTooLong)
}
