// Package client talks to the aqimon API, mapping transport and
// server failures onto the messages shown in the dashboard's error
// banner.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/inactivist/aqimon/pkg/model"
)

// Banner text for each failure class. Decode failures surface the
// decoder's own message instead.
const (
	msgTimeout      = "Unable to reach the server, try again"
	msgConnectivity = "Unable to reach the server, check your network connection"
	msgServerFault  = "The server had a problem, try again later"
	msgBadRequest   = "Verify your information and try again"
	msgUnknown      = "Unknown error"
)

func invalidURL(url string) string {
	return fmt.Sprintf("The URL %s was invalid", url)
}

// Error is an API failure carrying the banner text the dashboard
// shows. The underlying cause, when known, is available via Unwrap.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Client fetches readings and device status from an aqimon server.
type Client struct {
	base string
	http *http.Client
}

// New returns a Client for the API rooted at base, for example
// "http://localhost:8787".
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Readings fetches the recorded readings for one window.
func (c *Client) Readings(ctx context.Context, w model.Window) (model.Series, error) {
	body, err := c.get(ctx, c.base+"/api/sensor_data?window="+w.String())
	if err != nil {
		return nil, err
	}
	var series model.Series
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	return series, nil
}

// Status fetches and decodes the reader's device status. An unknown
// reader_status value is a decode failure, never a default state.
func (c *Client) Status(ctx context.Context) (model.DeviceStatus, error) {
	body, err := c.get(ctx, c.base+"/api/status")
	if err != nil {
		return model.DeviceStatus{}, err
	}
	var wire model.StatusWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.DeviceStatus{}, &Error{Message: err.Error(), Err: err}
	}
	status, err := wire.Status()
	if err != nil {
		return model.DeviceStatus{}, &Error{Message: err.Error(), Err: err}
	}
	return status, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Message: invalidURL(url), Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: msgConnectivity, Err: err}
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusInternalServerError:
		return nil, &Error{Message: msgServerFault}
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &Error{Message: msgBadRequest}
	default:
		return nil, &Error{Message: msgUnknown}
	}
}

// classify splits transport failures into timeouts and everything
// else. Malformed URLs never reach here; they fail while building the
// request.
func classify(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Message: msgTimeout, Err: err}
	}
	return &Error{Message: msgConnectivity, Err: err}
}
