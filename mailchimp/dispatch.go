package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// response is a dispatched and classified remote result
type response struct {
	status     int
	body       any
	classified *Envelope
}

// failed returns the error envelope for res: the classified error, or an
// unknown envelope for any other status outside 2xx. It is nil on success.
func (r response) failed() *Envelope {
	if r.classified != nil {
		return r.classified
	}
	if r.status < 200 || r.status >= 300 {
		env := unknownShape(r.body)
		env.Status = r.status
		return &env
	}
	return nil
}

// request dispatches and classifies. It returns false when a transport
// failure aborted the client.
func (c *Client) request(ctx context.Context, method, path string, payload map[string]any, suppress404 bool) (response, bool) {
	status, body, err := c.dispatch(ctx, method, path, payload)
	if err != nil {
		c.abort(err)
		return response{}, false
	}

	return response{
		status:     status,
		body:       body,
		classified: Classify(status, body, suppress404),
	}, true
}

// dispatch performs one HTTP request and decodes the JSON body. An empty
// body decodes to nil.
func (c *Client) dispatch(ctx context.Context, method, path string, payload map[string]any) (int, any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	sendMethod := method
	override := ""
	var reqBody io.Reader

	switch method {
	case http.MethodGet:
		if len(payload) > 0 {
			endpoint = appendQuery(endpoint, payload)
		}
	case http.MethodPost:
		data, err := encodePayload(payload)
		if err != nil {
			return 0, nil, &TransportError{Method: method, Path: path, Err: err}
		}
		reqBody = bytes.NewReader(data)
	default:
		if c.opts.methodOverride {
			sendMethod = http.MethodPost
			override = method
		}
		if payload != nil || override != "" {
			data, err := encodePayload(payload)
			if err != nil {
				return 0, nil, &TransportError{Method: method, Path: path, Err: err}
			}
			reqBody = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, sendMethod, endpoint, reqBody)
	if err != nil {
		return 0, nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Authorization", "OAuth "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if override != "" {
		req.Header.Set("X-HTTP-Method-Override", override)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("Mailchimp request failed")
		return 0, nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("Mailchimp API request")

	if len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil, nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	return resp.StatusCode, body, nil
}

func encodePayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// appendQuery serializes payload as a query string, respecting any query
// already present on endpoint.
func appendQuery(endpoint string, payload map[string]any) string {
	params := url.Values{}
	for key, value := range payload {
		params.Set(key, fmt.Sprint(value))
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
		if strings.HasSuffix(endpoint, "?") || strings.HasSuffix(endpoint, "&") {
			sep = ""
		}
	}
	return endpoint + sep + params.Encode()
}
