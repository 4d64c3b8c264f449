package domain

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLen is the minimum password length accepted at signup.
const MinPasswordLen = 10

// Validation messages shown next to form fields.
var (
	ErrLoginIDRequired   = errors.New("아이디를 입력해주세요")
	ErrPasswordRequired  = errors.New("비밀번호를 입력해주세요")
	ErrPasswordTooShort  = errors.New("영문+숫자 조합 10자리 이상 입력해주세요")
	ErrPasswordWeak      = errors.New("영문과 숫자를 포함해야 합니다")
	ErrNicknameRequired  = errors.New("닉네임을 입력해주세요")
	ErrCurrentNickname   = errors.New("기존 닉네임을 입력해주세요")
	ErrNewNickname       = errors.New("새로운 닉네임을 입력해주세요")
	ErrNicknameUnchanged = errors.New("기존 닉네임과 동일합니다")
)

// ValidateLogin checks the login form.
func ValidateLogin(username, password string) error {
	if username == "" {
		return ErrLoginIDRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// ValidatePassword enforces the signup password rule: at least
// MinPasswordLen characters including a letter and a digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrPasswordWeak
	}
	return nil
}

// ValidateSignup checks a signup request field by field, returning the first failure.
func ValidateSignup(req SignupRequest) error {
	if req.LoginID == "" {
		return ErrLoginIDRequired
	}
	if err := ValidatePassword(req.Password); err != nil {
		return err
	}
	if req.Nickname == "" {
		return ErrNicknameRequired
	}
	return nil
}

// ValidateNicknameChange checks the nickname change form.
func ValidateNicknameChange(current, next string) error {
	if current == "" {
		return ErrCurrentNickname
	}
	if next == "" {
		return ErrNewNickname
	}
	if current == next {
		return ErrNicknameUnchanged
	}
	return nil
}
