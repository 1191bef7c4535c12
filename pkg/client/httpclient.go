package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "roombook/pkg/errors"
)

const DefaultTimeout = 10 * time.Second

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHttpClient(baseURL string, timeout time.Duration) *HttpClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *HttpClient) GET(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil, headers)
}

func (c *HttpClient) POST(ctx context.Context, path string, query url.Values, body any, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, query, body, headers)
}

// do performs one attempt. A failure to reach the server or read its answer
// is reported as a Transport error; HTTP status handling is left to callers.
func (c *HttpClient) do(ctx context.Context, method, path string, query url.Values, body any, headers map[string]string) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, apperrors.Transport(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(fmt.Sprintf("%s %s: failed to read response body", method, path), err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

// ErrorBody decodes the error envelope written by pkg/http.WriteError.
func ErrorBody(resp *Response) apperrors.ErrorResponse {
	var errResp apperrors.ErrorResponse
	_ = resp.DecodeJSON(&errResp)
	if errResp.Error == "" {
		errResp.Error = http.StatusText(resp.StatusCode)
	}
	return errResp
}

