package storage

import "errors"

var (
	// ErrImageTooLarge indicates the remote image exceeds the size limit
	ErrImageTooLarge = errors.New("image too large")

	// ErrInvalidBlobURL indicates a blob URL without container or blob name
	ErrInvalidBlobURL = errors.New("invalid blob URL")

	// ErrForeignAccount indicates a blob URL for a storage account we hold no key for
	ErrForeignAccount = errors.New("blob URL belongs to a different storage account")
)
