package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// HTTPClient implements Client against an instance HTTP API. The session
// artifact (bearer token plus cookies) lives in a JSON file so subsequent runs
// can skip the login.
type HTTPClient struct {
	endpoint    string
	userAgent   string
	sessionFile string
	http        *http.Client
	token       string
	log         *slog.Logger
}

// NewHTTPClient builds a client for the given instance endpoint. No timeout is
// set here; the platform dictates how long logins and uploads may take.
func NewHTTPClient(endpoint, userAgent, sessionFile string, log *slog.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		endpoint:    endpoint,
		userAgent:   userAgent,
		sessionFile: sessionFile,
		http:        &http.Client{Jar: jar},
		log:         log,
	}
}

type sessionArtifact struct {
	Token   string        `json:"token"`
	Cookies []savedCookie `json:"cookies"`
	SavedAt time.Time     `json:"saved_at"`
}

type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires"`
}

func (c *HTTPClient) LoadSession() error {
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	var art sessionArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if art.Token == "" {
		return ErrSessionInvalid
	}

	base, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(art.Cookies))
	for _, sc := range art.Cookies {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: sc.Path, Expires: sc.Expires})
	}
	c.http.Jar.SetCookies(base, cookies)
	c.token = art.Token

	// A stale token is only discovered by asking the platform.
	req, err := http.NewRequest(http.MethodGet, c.endpoint+"/api/v1/session", nil)
	if err != nil {
		return err
	}
	c.decorate(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.token = ""
		return ErrSessionInvalid
	}

	c.log.Info("reusing persisted session", "saved_at", art.SavedAt.Format(time.RFC3339))
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password, code string) error {
	payload, err := json.Marshal(map[string]string{
		"username":          username,
		"password":          password,
		"verification_code": code,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/v1/session", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return loginError(resp.StatusCode, body)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("malformed login response: %w", err)
	}
	if result.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	c.token = result.Token
	return nil
}

func loginError(status int, body []byte) error {
	var detail struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &detail)
	switch detail.Error {
	case "challenge_required":
		return ErrChallengeRequired
	case "checkpoint_required":
		return ErrCheckpointRequired
	}
	if detail.Message != "" {
		return fmt.Errorf("login rejected (%d): %s", status, detail.Message)
	}
	return fmt.Errorf("login rejected with status %d", status)
}

func (c *HTTPClient) SaveSession() error {
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	art := sessionArtifact{Token: c.token, SavedAt: time.Now()}
	for _, ck := range c.http.Jar.Cookies(base) {
		art.Cookies = append(art.Cookies, savedCookie{Name: ck.Name, Value: ck.Value, Path: ck.Path, Expires: ck.Expires})
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.sessionFile, data, 0600)
}

func (c *HTTPClient) Upload(ctx context.Context, imagePath, caption string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("caption", caption); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("photo", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/v1/media", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result struct {
		MediaID string `json:"media_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("malformed upload response: %w", err)
	}
	return result.MediaID, nil
}

func (c *HTTPClient) decorate(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
