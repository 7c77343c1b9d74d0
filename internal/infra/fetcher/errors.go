package fetcher

import "errors"

// Sentinel errors for article page fetching. Callers treat every one of
// them as a reason to fall back to the mapped record content.
var (
	// ErrInvalidURL indicates the URL is malformed or uses a scheme other
	// than http/https.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private, loopback or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied")

	// ErrTooManyRedirects indicates the redirect chain exceeded the
	// configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractFailed indicates the readability pass found no usable
	// article text.
	ErrExtractFailed = errors.New("content extraction failed")
)
