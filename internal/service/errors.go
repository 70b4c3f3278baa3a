package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateContact = errors.New("contact already exists")
	ErrContactNotFound  = errors.New("contact not found")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrShareNotFound    = errors.New("share not found")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
