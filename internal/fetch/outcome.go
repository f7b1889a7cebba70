package fetch

import (
	"fmt"
	"strings"
)

// Kind classifies the outcome of a single fetch attempt.
type Kind int

const (
	// KindSuccess is an HTTP 200 with an HTML content type.
	KindSuccess Kind = iota

	// KindRateLimited is HTTP 429 or 403, the site's bot or
	// rate-limit signal. Retried with identity rotation.
	KindRateLimited

	// KindServerError is HTTP 500, 502, 503, or 504. Retried with
	// plain backoff; the server is struggling, not blocking us.
	KindServerError

	// KindTransportError is a failure below HTTP: timeout, connection
	// refused, proxy failure. Counted against the active proxy.
	KindTransportError

	// KindSkip is any other status or a non-HTML content type.
	// Terminal for this URL but not an error; the crawl moves past.
	KindSkip
)

// String returns a short name for logging.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindTransportError:
		return "transport_error"
	case KindSkip:
		return "skip"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the tagged result of one fetch attempt. Exactly one of
// the optional fields is meaningful per Kind: StatusCode for HTTP
// outcomes, Err for transport errors.
type Outcome struct {
	Kind       Kind
	StatusCode int

	// RetryAfter is the raw Retry-After header value, honored for
	// server errors when numeric.
	RetryAfter string

	// Err is the underlying transport error, nil for HTTP outcomes.
	Err error
}

// Classify maps a transport response (or error) to an Outcome.
func Classify(resp *Response, err error) Outcome {
	if err != nil {
		return Outcome{Kind: KindTransportError, Err: err}
	}

	switch resp.StatusCode {
	case 429, 403:
		return Outcome{
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	case 500, 502, 503, 504:
		return Outcome{
			Kind:       KindServerError,
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	case 200:
		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			return Outcome{Kind: KindSuccess, StatusCode: resp.StatusCode}
		}
		return Outcome{Kind: KindSkip, StatusCode: resp.StatusCode}
	default:
		return Outcome{Kind: KindSkip, StatusCode: resp.StatusCode}
	}
}
