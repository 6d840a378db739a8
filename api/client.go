package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"housefinder/logging"
	"housefinder/models"
)

const basePath = "/api/v1/properties"

// envelope is the uniform wire wrapper. code 200 is the only success value;
// every other code is an application error even on a 2xx transport status.
type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const envelopeSuccess = 200

// Client is the single choke point for every outbound request: base address,
// timeout, header policy, envelope unwrapping, and error classification all
// live here. Construct one and pass it by reference; there is no ambient
// singleton.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string // optional bearer token source, may be nil
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SetTokenSource installs a bearer token provider consulted per request.
func (c *Client) SetTokenSource(source func() string) {
	c.token = source
}

// SubmitForm sends the structured questionnaire and returns the
// recommendation result with canonicalized coordinates.
func (c *Client) SubmitForm(ctx context.Context, prefs *models.FormPreferences) (*models.Recommendations, error) {
	var res models.Recommendations
	if err := c.do(ctx, http.MethodPost, basePath+"/submit-form", prefs, &res); err != nil {
		return nil, err
	}
	res.Properties = models.CanonicalizeCoordinates(res.Properties)
	return &res, nil
}

// SubmitDescription sends a free-text enquiry. An incomplete description
// surfaces as a *ValidationError carrying the missing fields.
func (c *Client) SubmitDescription(ctx context.Context, enquiry *models.DescriptionEnquiry) (*models.Recommendations, error) {
	var res models.Recommendations
	if err := c.do(ctx, http.MethodPost, basePath+"/submit-description", enquiry, &res); err != nil {
		return nil, err
	}
	res.Properties = models.CanonicalizeCoordinates(res.Properties)
	return &res, nil
}

// DefaultRecommendations fetches the no-submission result set.
func (c *Client) DefaultRecommendations(ctx context.Context) (*models.Recommendations, error) {
	var res models.Recommendations
	if err := c.do(ctx, http.MethodGet, basePath+"/recommendation-no-submit", nil, &res); err != nil {
		return nil, err
	}
	res.Properties = models.CanonicalizeCoordinates(res.Properties)
	return &res, nil
}

// PropertyDetail fetches a single listing by id.
func (c *Client) PropertyDetail(ctx context.Context, id int) (*models.Property, error) {
	var prop models.Property
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", basePath, id), nil, &prop); err != nil {
		return nil, err
	}
	single := models.CanonicalizeCoordinates([]models.Property{prop})
	return &single[0], nil
}

// PropertyMap fetches the embeddable map fragment for a property. The body
// is opaque HTML, not an envelope.
func (c *Client) PropertyMap(ctx context.Context, req *models.MapRequest) (*models.MapDocument, error) {
	html, err := c.doRaw(ctx, http.MethodPost, basePath+"/map", req)
	if err != nil {
		return nil, err
	}
	return &models.MapDocument{HTML: html}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, raw, err := c.roundTrip(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var ve ValidationError
		if jsonErr := json.Unmarshal(raw, &ve); jsonErr == nil && ve.Code != 0 {
			return &ve
		}
		// FastAPI wraps handler-raised detail payloads
		var detail struct {
			Detail ValidationError `json:"detail"`
		}
		if jsonErr := json.Unmarshal(raw, &detail); jsonErr == nil && detail.Detail.Code != 0 {
			return &detail.Detail
		}
	}

	if resp.StatusCode >= 400 {
		log.Printf("API: %s %s returned %d: %s", method, path, resp.StatusCode, truncate(raw, 300))
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Code != nil {
			return &APIError{Code: *env.Code, Message: env.Message, Status: resp.StatusCode}
		}
		return fmt.Errorf("api error %d: %s", resp.StatusCode, truncate(raw, 300))
	}

	if looksLikeHTML(raw) {
		return fmt.Errorf("%w (from %s %s)", ErrUnexpectedHTML, method, path)
	}

	// The envelope check happens once, here at the boundary. A payload
	// without a code field passes through as-is.
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Code != nil {
		if *env.Code != envelopeSuccess {
			return &APIError{Code: *env.Code, Message: env.Message, Status: resp.StatusCode}
		}
		logging.Debugf("API: %s %s unwrapped envelope (%d bytes)", method, path, len(env.Data))
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode envelope data: %w", err)
		}
		return nil
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doRaw performs a map-fragment request: Accept text/html, body returned
// verbatim.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) (string, error) {
	resp, raw, err := c.roundTrip(ctx, method, path, body, "text/html")
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		log.Printf("API: %s %s returned %d: %s", method, path, resp.StatusCode, truncate(raw, 300))
		return "", fmt.Errorf("map fetch failed with status %d", resp.StatusCode)
	}

	return string(raw), nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, accept string) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{URL: url, Err: err}
	}

	return resp, raw, nil
}

func truncate(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
