package userdirectory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client fetches user details from the user service REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a user service client rooted at baseURL, e.g.
// http://localhost:8081/api/users.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup calls GET {baseURL}/{userID} with the caller's bearer token.
func (c *Client) Lookup(ctx context.Context, userID int64, token string) (Details, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return Details{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Details{}, fmt.Errorf("%w: user %d returned status %d", ErrUnavailable, userID, resp.StatusCode)
	}

	var d Details
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Details{}, fmt.Errorf("%w: decode user %d: %v", ErrUnavailable, userID, err)
	}
	return d, nil
}
