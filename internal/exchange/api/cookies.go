package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

const cookieFile = "cookies.json"

// The session credential is an opaque cookie; the client never inspects it,
// it only carries it. Persisting the jar lets a restarted client resume a
// still-valid server session the way a browser does across reloads.

// SaveSession writes the cookies for the base URL to the state directory.
func (c *Client) SaveSession(stateDir string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	cookies := c.httpClient.Jar.Cookies(u)
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	return os.WriteFile(filepath.Join(stateDir, cookieFile), data, 0o600)
}

// RestoreSession loads previously saved cookies into the jar. A missing file
// is not an error; it just means there is no session to resume.
func (c *Client) RestoreSession(stateDir string) error {
	data, err := os.ReadFile(filepath.Join(stateDir, cookieFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("failed to decode session file: %w", err)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	c.httpClient.Jar.SetCookies(u, cookies)
	return nil
}

// ClearSession removes the persisted cookies. Idempotent.
func ClearSession(stateDir string) {
	_ = os.Remove(filepath.Join(stateDir, cookieFile))
}
