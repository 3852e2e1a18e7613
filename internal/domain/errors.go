package domain

import "errors"

var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrNoCommonHistory     = errors.New("no common history")
	ErrProviderFailure     = errors.New("price provider failure")
	ErrInvalidPreferences  = errors.New("invalid preferences")
	ErrUnsupportedVersion  = errors.New("unsupported preferences version")
)
