// Package mediawiki is a minimal MediaWiki API session: login, token fetch,
// page reads and edits. It covers exactly the calls the counts run needs.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// APIError is an error object returned by the MediaWiki API.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki: %s: %s", e.Code, e.Info)
}

// Client is an authenticated MediaWiki API session. Sessions are scoped:
// Login before use, Logout when the work for that wiki is done.
type Client struct {
	apiURL     string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	// assertParam is sent with every call after login so the API rejects
	// requests if the session silently expired.
	assertParam string
}

// NewClient creates a session for the given api.php URL and credentials.
func NewClient(apiURL, username, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &Client{
		apiURL:   apiURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		logger: slog.Default(),
	}, nil
}

type apiResponse struct {
	Error *APIError `json:"error"`
	Login *struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
	} `json:"login"`
	Query *struct {
		Tokens map[string]string `json:"tokens"`
		Pages  map[string]struct {
			Missing   *string `json:"missing"`
			Revisions []struct {
				Content string `json:"*"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
	Edit *struct {
		Result string `json:"result"`
	} `json:"edit"`
}

// call performs one API request. Queries go as GET, every other action as a
// POST form; format=json and the post-login assert parameter are always
// appended.
func (c *Client) call(ctx context.Context, params url.Values) (*apiResponse, error) {
	action := params.Get("action")
	params.Set("format", "json")
	if c.assertParam != "" {
		params.Set("assert", c.assertParam)
	}

	var req *http.Request
	var err error
	if action == "query" {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet,
			c.apiURL+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost,
			c.apiURL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", action, err)
	}
	defer resp.Body.Close()

	// Only queries are logged: POST bodies carry credentials and tokens.
	if action == "query" {
		c.logger.Debug("mediawiki request", "url", req.URL.Redacted())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calling %s: unexpected status %d", action, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", action, err)
	}
	if parsed.Error != nil {
		return nil, parsed.Error
	}
	return &parsed, nil
}

// Token fetches a token of the given kind ("csrf", "login", ...).
func (c *Client) Token(ctx context.Context, kind string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", kind)

	resp, err := c.call(ctx, params)
	if err != nil {
		return "", err
	}
	if resp.Query == nil {
		return "", fmt.Errorf("token response missing query body")
	}
	for _, v := range resp.Query.Tokens {
		return v, nil
	}
	return "", fmt.Errorf("no %s token in response", kind)
}

// Login starts the session. Subsequent calls assert the logged-in user so a
// dropped session fails loudly instead of editing anonymously.
func (c *Client) Login(ctx context.Context) error {
	c.logger.Debug("logging in", "api", c.apiURL, "username", c.username)

	token, err := c.Token(ctx, "login")
	if err != nil {
		return fmt.Errorf("fetching login token: %w", err)
	}

	params := url.Values{}
	params.Set("action", "login")
	params.Set("lgname", c.username)
	params.Set("lgpassword", c.password)
	params.Set("lgtoken", token)

	resp, err := c.call(ctx, params)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if resp.Login == nil || resp.Login.Result != "Success" {
		reason := "no login body"
		if resp.Login != nil {
			reason = fmt.Sprintf("%s: %s", resp.Login.Result, resp.Login.Reason)
		}
		return fmt.Errorf("login rejected: %s", reason)
	}

	c.assertParam = "user"
	return nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	c.logger.Debug("logging out", "api", c.apiURL, "username", c.username)

	token, err := c.Token(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("fetching logout token: %w", err)
	}

	params := url.Values{}
	params.Set("action", "logout")
	params.Set("token", token)

	if _, err := c.call(ctx, params); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	c.assertParam = ""
	return nil
}

// PageContent returns the current wikitext of the page.
func (c *Client) PageContent(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("titles", title)
	params.Set("rvprop", "content")

	resp, err := c.call(ctx, params)
	if err != nil {
		return "", err
	}
	if resp.Query == nil {
		return "", fmt.Errorf("page response missing query body")
	}
	for _, page := range resp.Query.Pages {
		if page.Missing != nil {
			return "", fmt.Errorf("page %q does not exist", title)
		}
		if len(page.Revisions) == 0 {
			return "", fmt.Errorf("page %q has no revisions", title)
		}
		return page.Revisions[0].Content, nil
	}
	return "", fmt.Errorf("page %q not in response", title)
}

// EditPage replaces the page's text in a single edit.
func (c *Client) EditPage(ctx context.Context, title, text, summary string, bot bool) error {
	token, err := c.Token(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("fetching edit token: %w", err)
	}

	params := url.Values{}
	params.Set("action", "edit")
	params.Set("title", title)
	params.Set("text", text)
	params.Set("summary", summary)
	params.Set("token", token)
	if bot {
		params.Set("bot", "1")
	}

	resp, err := c.call(ctx, params)
	if err != nil {
		return fmt.Errorf("editing %q: %w", title, err)
	}
	if resp.Edit == nil || resp.Edit.Result != "Success" {
		return fmt.Errorf("edit of %q was not accepted", title)
	}
	return nil
}
