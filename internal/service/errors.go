package service

import (
	"errors"
	"fmt"
)

var (
	ErrServiceNotConfigured = errors.New("service not configured")
	ErrChatNotFound         = errors.New("chat not found")
	ErrReplyGeneration      = errors.New("reply generation failed")
	ErrStorage              = errors.New("storage failure")
	ErrAppendRateLimited    = errors.New("append rate limited")
)

// storageErr marca err como fallo de persistencia conservando la causa.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
