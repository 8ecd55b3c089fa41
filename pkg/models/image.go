package models

// ImagePayload is an image as received: raw bytes plus the MIME type reported for them.
// It lives for a single request and is never re-encoded.
type ImagePayload struct {
	Data     []byte
	MimeType string
	Filename string
}

// Empty reports whether the payload carries no image bytes.
func (p *ImagePayload) Empty() bool {
	return p == nil || len(p.Data) == 0
}

