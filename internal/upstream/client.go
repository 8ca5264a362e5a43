// Package upstream performs the single outbound call of an invocation and
// sorts its failures into HTTP errors and transport errors.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Request is a fully built provider call.
type Request struct {
	URL       string
	Header    http.Header
	Body      []byte
	Timeout   time.Duration
	Streaming bool
}

// Response is a buffered 2xx provider answer.
type Response struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       string
}

// Client sends requests over a shared transport. Each call gets its own
// timeout covering connect, headers and the full body read.
type Client struct {
	transport http.RoundTripper
}

func NewClient() *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{transport: transport}
}

// NewClientWithTransport is used by tests to stub the network.
func NewClientWithTransport(rt http.RoundTripper) *Client {
	return &Client{transport: rt}
}

// Do performs req. Non-2xx answers come back as *HTTPError, network and
// timeout failures as *TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	client := &http.Client{Transport: c.transport, Timeout: req.Timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Timeout: req.Timeout, Err: err}
	}
	defer resp.Body.Close()

	reason := reasonPhrase(resp)

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if readErr != nil {
			text = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, reason)
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Reason:     reason,
			Header:     resp.Header,
			Body:       text,
		}
	}
	if readErr != nil {
		return nil, &TransportError{Timeout: req.Timeout, Err: fmt.Errorf("read upstream body: %w", readErr)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Reason:     reason,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}

func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
