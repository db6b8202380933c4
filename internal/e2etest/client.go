package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/justinas/nosurf"
	"github.com/myrjola/casebook/internal/errors"
)

// PlayerIDHeader is the header a hosting platform uses to name the player.
const PlayerIDHeader = "X-Player-ID"

type Client struct {
	client    *http.Client
	url       string
	playerID  string
	csrfToken string
}

// NewClient creates an HTTP client that keeps the session and CSRF cookies of the server.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client:    &http.Client{Jar: jar},
		url:       url,
		playerID:  "",
		csrfToken: "",
	}, nil
}

// SetPlayerID makes the client act as the given player instead of the anonymous session player.
func (c *Client) SetPlayerID(playerID string) {
	c.playerID = playerID
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		resp *http.Response
		doc  *goquery.Document
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if c.playerID != "" {
		req.Header.Set(PlayerIDHeader, c.playerID)
	}
	return req, nil
}

// LandingPage fetches the landing page of the game session and remembers its CSRF token for the API calls.
func (c *Client) LandingPage(ctx context.Context, sessionID string) (*goquery.Document, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.GetDoc(ctx, "/?session="+neturl.QueryEscape(sessionID)); err != nil {
		return nil, errors.Wrap(err, "get landing page")
	}
	if c.csrfToken, err = c.extractCSRFToken(doc, AccusationPath(sessionID)); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}
	return doc, nil
}

// AccusationPath returns the daily accusation endpoint of a game session.
func AccusationPath(sessionID string) string {
	return fmt.Sprintf("/api/sessions/%s/daily/accusation", neturl.PathEscape(sessionID))
}

// DoJSON sends body as JSON and decodes a successful response into out. The status code is returned also for
// unsuccessful responses. Call LandingPage first so that the request carries a CSRF token.
func (c *Client) DoJSON(ctx context.Context, method, urlPath string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequestWithContext(ctx, method, urlPath, reader)
	if err != nil {
		return 0, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(nosurf.HeaderName, c.csrfToken)
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest || out == nil {
		return resp.StatusCode, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decode response body", slog.String("path", urlPath))
	}
	return resp.StatusCode, nil
}

func (c *Client) extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("form", formSelector))
	}
	return csrfToken, nil
}

// SubmitForm submits the form with action formActionURLPath found at formURLPath with the given values and the
// form's CSRF token. The response body is decoded into out when it is not nil.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
	out any,
) (int, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.GetDoc(ctx, formURLPath); err != nil {
		return 0, errors.Wrap(err, "get document")
	}

	// Extract CSRF token from the form.
	var csrfToken string
	if csrfToken, err = c.extractCSRFToken(doc, formActionURLPath); err != nil {
		return 0, errors.Wrap(err, "extract CSRF token")
	}

	// Build form data
	formData := neturl.Values{}
	for key, vs := range values {
		formData[key] = vs
	}
	formData.Set("csrf_token", csrfToken)
	data := strings.NewReader(formData.Encode())

	// Submit the form
	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath, data); err != nil {
		return 0, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest || out == nil {
		return resp.StatusCode, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decode response body")
	}
	return resp.StatusCode, nil
}
