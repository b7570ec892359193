package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// IdentityClient bicara dengan REST API identity provider (GoTrue / Netlify Identity).
type IdentityClient struct {
	BaseURL string
	Client  *http.Client
}

func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &IdentityClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// maxBodyBytes membatasi body response yang dibaca dari provider.
const maxBodyBytes = 1 << 20

type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUserNotFound       ErrorCode = "user_not_found"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeRejected           ErrorCode = "rejected"
	CodeMalformed          ErrorCode = "malformed_response"
)

// ProviderError adalah penolakan dari provider yang sudah dinormalisasi ke kode tertutup.
type ProviderError struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity provider: %s (status=%d)", e.Code, e.Status)
	}
	return fmt.Sprintf("identity provider: %s (status=%d): %s", e.Code, e.Status, e.Message)
}

type SessionInfo struct {
	OK     bool
	UserID string
	Email  string
}

type UserAttributes struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateOutcome is either UpdateSucceeded or UpdateRejected.
type UpdateOutcome interface {
	isUpdateOutcome()
}

type UpdateSucceeded struct {
	Email string
}

type UpdateRejected struct {
	Reason *ProviderError
}

func (UpdateSucceeded) isUpdateOutcome() {}
func (UpdateRejected) isUpdateOutcome()  {}

// bentuk error GoTrue tidak seragam: {code,msg} atau {error,error_description}
type providerErrorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (b providerErrorBody) text() string {
	for _, s := range []string{b.ErrorDescription, b.Msg, b.Message, b.Error} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

type identityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	providerErrorBody
}

type healthResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// VerifySession: GET /user dengan bearer token. Token ditolak (4xx) -> OK=false tanpa error.
func (c *IdentityClient) VerifySession(ctx context.Context, token string) (SessionInfo, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/user", token, nil, "")
	if err != nil {
		return SessionInfo{}, err
	}
	switch {
	case status >= 200 && status < 300:
		var u identityUser
		if err := json.Unmarshal(raw, &u); err != nil {
			return SessionInfo{}, &ProviderError{Code: CodeMalformed, Status: status, Message: err.Error()}
		}
		if u.Error != "" || strings.TrimSpace(u.Email) == "" {
			return SessionInfo{OK: false}, nil
		}
		return SessionInfo{OK: true, UserID: u.ID, Email: u.Email}, nil
	case status >= 400 && status < 500:
		return SessionInfo{OK: false}, nil
	default:
		return SessionInfo{}, classify(status, raw)
	}
}

// Authenticate: POST /token?grant_type=password. nil berarti password benar.
func (c *IdentityClient) Authenticate(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	status, raw, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		var b providerErrorBody
		if json.Unmarshal(raw, &b) == nil && b.Error != "" {
			return classify(status, raw)
		}
		return nil
	}
	return classify(status, raw)
}

// UpdateUser: PUT /user. Provider tidak kasih flag sukses eksplisit; sukses
// disimpulkan dari tidak adanya error dan adanya email di object user.
func (c *IdentityClient) UpdateUser(ctx context.Context, token string, attrs UserAttributes) (UpdateOutcome, error) {
	body, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	status, raw, err := c.do(ctx, http.MethodPut, "/user", token, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return UpdateRejected{Reason: classify(status, raw)}, nil
	}

	var u identityUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return UpdateRejected{Reason: &ProviderError{Code: CodeMalformed, Status: status}}, nil
	}
	if u.Error != "" || u.ErrorDescription != "" {
		return UpdateRejected{Reason: classify(status, raw)}, nil
	}
	if strings.TrimSpace(u.Email) == "" {
		return UpdateRejected{Reason: &ProviderError{Code: CodeMalformed, Status: status}}, nil
	}
	return UpdateSucceeded{Email: u.Email}, nil
}

// Health: GET /health, dipakai readiness probe dan CLI.
func (c *IdentityClient) Health(ctx context.Context) error {
	status, raw, err := c.do(ctx, http.MethodGet, "/health", "", nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return classify(status, raw)
	}
	var h healthResponse
	if err := json.Unmarshal(raw, &h); err != nil {
		return &ProviderError{Code: CodeMalformed, Status: status, Message: err.Error()}
	}
	return nil
}

func (c *IdentityClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (int, []byte, error) {
	if c == nil {
		return 0, nil, fmt.Errorf("identity client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("identity %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("identity %s %s: read body: %w", method, path, err)
	}
	return resp.StatusCode, raw, nil
}

// classify memetakan bentuk error provider ke kode tertutup. Pencocokan teks
// provider cuma boleh terjadi di sini.
func classify(status int, raw []byte) *ProviderError {
	var b providerErrorBody
	_ = json.Unmarshal(raw, &b)
	msg := b.text()
	if msg == "" && status >= 400 {
		msg = http.StatusText(status)
	}
	lower := strings.ToLower(msg)

	code := CodeRejected
	switch {
	case strings.Contains(lower, "user not found"):
		code = CodeUserNotFound
	case strings.Contains(lower, "bad request"):
		code = CodeBadRequest
	case b.Error == "invalid_grant":
		code = CodeInvalidCredentials
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = CodeUnauthorized
	case status == http.StatusNotFound:
		code = CodeUserNotFound
	}
	return &ProviderError{Code: code, Status: status, Message: msg}
}
