package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// DefaultTimeout applies when a caller passes a zero timeout.
const DefaultTimeout = 10 * time.Second

var ErrTimeout = errors.New("upstream timeout")

// TimeoutError carries the user-facing message of the route that timed out.
type TimeoutError struct {
	Service string
	Message string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// DoWithTimeout performs req under its own deadline and buffers the body before
// the deadline is released. Non-2xx responses are returned as-is. When the
// deadline fires the error is a *TimeoutError with timeoutMessage.
func (c *Client) DoWithTimeout(ctx context.Context, req Request, timeout time.Duration, timeoutMessage string) (*Response, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	resp, err := c.Do(tctx, req.Method, req.Path, encodeQuery(req), bodyReader(req.Body), req.Header)
	if err != nil {
		return nil, c.classify(tctx, err, start, timeoutMessage)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(tctx, err, start, timeoutMessage)
	}

	outcome := "ok"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_error"
	}
	c.observe(outcome, start)

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) classify(tctx context.Context, err error, start time.Time, timeoutMessage string) error {
	if isTimeout(tctx, err) {
		c.observe("timeout", start)
		return &TimeoutError{Service: c.Name, Message: timeoutMessage}
	}
	c.observe("network_error", start)
	return fmt.Errorf("%s request failed: %w", c.Name, err)
}

func isTimeout(tctx context.Context, err error) bool {
	if errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func encodeQuery(req Request) string {
	if len(req.Query) == 0 {
		return ""
	}
	return req.Query.Encode()
}
