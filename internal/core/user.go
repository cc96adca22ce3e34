package core

import (
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
)

// DefaultProfileBalance is the opening balance given to every new profile.
var DefaultProfileBalance = MoneyFromCents(10000)

type (
	// User is an authenticated identity. Each user owns exactly one profile.
	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		ProfileID    int64
		CreatedAt    time.Time
	}

	// Registration is the input of a sign-up request.
	Registration struct {
		Username  string
		Email     string
		Password  string
		Password2 string
	}
)

// commonPasswords is a short deny list; it catches the usual suspects.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwertyuiop": {}, "qwerty123": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {}, "admin123": {},
	"letmein1": {}, "trustno1": {}, "passw0rd": {}, "abc12345": {}, "11111111": {},
}

// ValidatePassword applies the password policy. username may be empty.
func ValidatePassword(password, username string) []string {
	var msgs []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		msgs = append(msgs, "This password is too short. It must contain at least 8 characters.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		msgs = append(msgs, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	if username != "" && len(username) >= 3 {
		lp, lu := strings.ToLower(password), strings.ToLower(username)
		if strings.Contains(lp, lu) || strings.Contains(lu, lp) {
			msgs = append(msgs, "The password is too similar to the username.")
		}
	}
	return msgs
}

// Validate checks a registration request.
func (r Registration) Validate() error {
	verr := &ValidationError{}
	username := strings.TrimSpace(r.Username)
	switch {
	case username == "":
		verr.Add("username", MsgRequired)
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		verr.Add("username", "Ensure this field has no more than 150 characters.")
	case strings.IndexFunc(username, invalidUsernameRune) >= 0:
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if strings.TrimSpace(r.Email) == "" {
		verr.Add("email", MsgRequired)
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	if r.Password == "" {
		verr.Add("password", MsgRequired)
	}
	if r.Password2 == "" {
		verr.Add("password2", MsgRequired)
	}
	if verr.OrNil() != nil {
		return verr
	}
	if r.Password != r.Password2 {
		verr.Add(NonFieldErrorsField, "Passwords do not match.")
		return verr
	}
	for _, msg := range ValidatePassword(r.Password, username) {
		verr.Add("password", msg)
	}
	return verr.OrNil()
}

func invalidUsernameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	return !strings.ContainsRune("@.+-_", r)
}
