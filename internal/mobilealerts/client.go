package mobilealerts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// lastMeasurementPath is the vendor endpoint for batched last readings.
const lastMeasurementPath = "/api/pv1/device/lastmeasurement"

// defaultTimeout bounds a single request when the caller passes none.
const defaultTimeout = 10 * time.Second

// Client talks to the Mobile Alerts measurement service.
//
// The service accepts a single form-encoded POST carrying a
// comma-joined device id list and returns the latest reading for each
// device, so one poll cycle costs exactly one round trip regardless of
// the sensor count.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a measurement API client.
//
// Parameters:
//   - baseURL: Service base URL ("https://www.data199.com" in
//     production, the mockapi address in development)
//   - timeout: Per-request bound; <= 0 uses the 10 second default
//
// Returns:
//   - *Client: Client ready for use
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LastMeasurements fetches the latest reading for every given device in
// a single request.
//
// Any network-level failure, non-200 status, undecodable body, or a
// response without success=true returns an error; the caller treats all
// of them identically as a failed cycle.
//
// Parameters:
//   - ctx: Context for cancellation (the client timeout still applies)
//   - deviceIDs: Device ids to query; must not be empty
//
// Returns:
//   - *Response: Decoded payload with success=true
//   - error: Wrapping ErrRequestFailed, ErrUnexpectedStatus, or
//     ErrUnsuccessful
func (c *Client) LastMeasurements(ctx context.Context, deviceIDs []string) (*Response, error) {
	if len(deviceIDs) == 0 {
		return nil, fmt.Errorf("%w: no device ids given", ErrRequestFailed)
	}

	form := url.Values{}
	form.Set("deviceids", strings.Join(deviceIDs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+lastMeasurementPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrRequestFailed, err)
	}

	if !payload.Success {
		return nil, ErrUnsuccessful
	}

	return &payload, nil
}
