package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ImageRequest struct {
	Prompt      string
	AspectRatio string
}

type ImageErrorCode string

const (
	ImageRateLimited      ImageErrorCode = "rate-limited"
	ImageContentPolicy    ImageErrorCode = "content-policy"
	ImageModelUnavailable ImageErrorCode = "model-unavailable"
	ImageInvalidKey       ImageErrorCode = "invalid-key"
	ImageUnknown          ImageErrorCode = "unknown"
)

// ImageError is the structured failure of GenerateImage.
type ImageError struct {
	Code  ImageErrorCode
	Model string
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("gemini image %s (%s): %v", e.Code, e.Model, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Fallbackable reports whether a secondary model tier may succeed where this one failed.
func (c ImageErrorCode) Fallbackable() bool {
	return c == ImageModelUnavailable || c == ImageRateLimited
}

var errNoImage = errors.New("response contained no image")

func imageErrorCode(status int, body string) ImageErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return ImageRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ImageInvalidKey
	case status == http.StatusBadRequest && strings.Contains(body, "API key not valid"):
		return ImageInvalidKey
	case status == http.StatusNotFound || status == http.StatusServiceUnavailable:
		return ImageModelUnavailable
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(body), "safety"):
		return ImageContentPolicy
	}
	return ImageUnknown
}

// CodeOf extracts the image error code from err, or ImageUnknown.
func CodeOf(err error) ImageErrorCode {
	var ie *ImageError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ImageUnknown
}
