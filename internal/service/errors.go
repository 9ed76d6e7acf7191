package service

import "errors"

var (
	ErrTestNotFound        = errors.New("test not found or inactive")
	ErrNoMoreProblems      = errors.New("no more problems")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrInvalidAccessPass   = errors.New("invalid or expired access pass")
)
