package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// defaultHeaders are sent with every request. Some exchanges reject
// requests without a browser-ish user agent.
var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0",
	"Accept":     "application/json",
}

// getJSON performs a single GET and decodes the JSON body into v.
// Transport errors and non-200 statuses map to ErrUnavailable, decode
// errors to ErrBadSchema. Unknown fields in the body are ignored.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for key, value := range defaultHeaders {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSchema, err)
	}
	return nil
}

// parsePrice parses a price field that exchanges serialize as a string.
// Reports false for absent, malformed or non-positive values.
func parsePrice(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil && f > 0
}
