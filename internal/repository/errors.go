package repository

import "errors"

var (
	// ErrSourceUnavailable indicates no fetcher is configured for the URL's storage backend
	ErrSourceUnavailable = errors.New("image source unavailable")
)
