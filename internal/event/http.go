package event

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrBodyTooLarge is returned by FromHTTP when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// FromHTTP builds a Request from a server-mode HTTP request. Only the first
// value of each header is kept, matching what the function ingress delivers.
func FromHTTP(r *http.Request, maxBody int64) (Request, error) {
	var reader io.Reader = r.Body
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return Request{}, fmt.Errorf("read request body: %w", err)
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return Request{}, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxBody)
	}

	headers := make(Headers, len(r.Header))
	for k, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		headers[k] = values[0]
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		text = defaultBody
	}

	return Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: headers,
		Body:    text,
		Keys:    []string{"body", "headers", "httpMethod", "isBase64Encoded", "path"},
	}, nil
}
