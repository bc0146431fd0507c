// Package mailapi is the HTTP client for the remote mail service.
package mailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/pkg/auth"
	"golang.org/x/oauth2"
)

const maxResponseBytes = 8 << 20

// ErrTransport marks failures that never produced a usable response.
var ErrTransport = errors.New("mail service unreachable")

// APIError is returned when the service answered but refused the request,
// either with a non-2xx status or with an "error" field in the body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mail service error (%d)", e.Status)
	}
	return fmt.Sprintf("mail service error (%d): %s", e.Status, e.Message)
}

// Config holds the transport settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient is used as the base transport when set (tests).
	HTTPClient *http.Client
}

// Client talks to the mail service on behalf of one session.
type Client struct {
	baseURL    string
	accountID  string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	logger     *log.Logger
}

// New creates a client bound to sess.
func New(cfg Config, sess auth.Session) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL must include a host")
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx := context.Background()
	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	tokens := sess.TokenSource()
	httpClient := oauth2.NewClient(ctx, tokens)
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		accountID:  sess.AccountID,
		tokens:     tokens,
		httpClient: httpClient,
	}, nil
}

// SetLogger sets the logger for request tracing.
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// AccountID returns the account the client is bound to.
func (c *Client) AccountID() string {
	return c.accountID
}

func (c *Client) token() (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: token unavailable: %v", ErrTransport, err)
	}
	return tok.AccessToken, nil
}

// doRequest performs an authenticated request and decodes a JSON answer into out.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logf("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	c.logf("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp.StatusCode, raw)
	}

	var env apiEnvelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: env.Error}
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrTransport, path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, "", nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.doRequest(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload), out)
}

// apiEnvelope captures the fields every answer may carry.
type apiEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func handleErrorResponse(status int, body []byte) error {
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return &APIError{Status: status, Message: env.Error}
		}
		if env.Message != "" {
			return &APIError{Status: status, Message: env.Message}
		}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf("mailapi: "+format, args...)
	}
}

// ListFolder fetches the full contents of folder. Templates are served by ListTemplates.
func (c *Client) ListFolder(ctx context.Context, folder mailbox.Folder) ([]mailbox.Message, error) {
	var resp folderResponse
	switch folder {
	case mailbox.Inbox, mailbox.Sent, mailbox.Drafts, mailbox.Trash:
		if err := c.getJSON(ctx, "/"+string(folder)+"/"+url.PathEscape(c.accountID), &resp); err != nil {
			return nil, err
		}
	case mailbox.Scheduled:
		tok, err := c.token()
		if err != nil {
			return nil, err
		}
		if err := c.postJSON(ctx, "/scheduled", tokenRequest{Token: tok}, &resp); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("folder %q has no message listing", folder)
	}
	return fromWire(resp.pick(folder), folder), nil
}

// ListTemplates fetches stored templates.
func (c *Client) ListTemplates(ctx context.Context) ([]mailbox.Template, error) {
	var resp struct {
		Templates []mailbox.Template `json:"templates"`
	}
	if err := c.getJSON(ctx, "/templates/"+url.PathEscape(c.accountID), &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

// Search runs query against folder on the server.
func (c *Client) Search(ctx context.Context, query string, folder mailbox.Folder) ([]mailbox.Message, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Results []wireMessage `json:"results"`
	}
	req := searchRequest{Token: tok, Query: query, Folder: string(folder)}
	if err := c.postJSON(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}
	return fromWire(resp.Results, folder), nil
}

// MarkRead flips m to read.
func (c *Client) MarkRead(ctx context.Context, m mailbox.Message, activeTab mailbox.Folder) error {
	return c.mailAction(ctx, "/mark_read", m, activeTab)
}

// MarkUnread flips m to unread.
func (c *Client) MarkUnread(ctx context.Context, m mailbox.Message, activeTab mailbox.Folder) error {
	return c.mailAction(ctx, "/mark_unread", m, activeTab)
}

// DeleteMail moves m to trash, or cancels it when activeTab is scheduled.
func (c *Client) DeleteMail(ctx context.Context, m mailbox.Message, activeTab mailbox.Folder) error {
	return c.mailAction(ctx, "/delete_mail", m, activeTab)
}

func (c *Client) mailAction(ctx context.Context, path string, m mailbox.Message, activeTab mailbox.Folder) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	req := mailRequest{Token: tok, Mail: toWire(m), ActiveTab: string(activeTab)}
	return c.postJSON(ctx, path, req, nil)
}

// PermanentDelete removes a trashed message for good.
func (c *Client) PermanentDelete(ctx context.Context, m mailbox.Message) error {
	return c.trashAction(ctx, "/permanent_delete", m)
}

// Restore moves a trashed message back to its original folder.
func (c *Client) Restore(ctx context.Context, m mailbox.Message) error {
	return c.trashAction(ctx, "/restore_email", m)
}

func (c *Client) trashAction(ctx context.Context, path string, m mailbox.Message) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.postJSON(ctx, path, mailRequest{Token: tok, Mail: toWire(m)}, nil)
}

// DeleteDraft removes a draft.
func (c *Client) DeleteDraft(ctx context.Context, draft mailbox.Message) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.postJSON(ctx, "/delete_draft", draftRequest{Token: tok, Draft: toWire(draft)}, nil)
}

// SaveDraft stores out as a new draft.
func (c *Client) SaveDraft(ctx context.Context, out mailbox.Outgoing) error {
	return c.outgoing(ctx, "/save_draft", out, "")
}

// Send dispatches out immediately.
func (c *Client) Send(ctx context.Context, out mailbox.Outgoing) error {
	return c.outgoing(ctx, "/send", out, "")
}

// Schedule queues out for delivery at the given instant.
func (c *Client) Schedule(ctx context.Context, out mailbox.Outgoing, at time.Time) error {
	return c.outgoing(ctx, "/schedule", out, FormatScheduleTime(at))
}

// FormatScheduleTime renders t the way the service expects scheduleTime.
func FormatScheduleTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (c *Client) outgoing(ctx context.Context, path string, out mailbox.Outgoing, scheduleTime string) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	req := outgoingRequest{
		Token:        tok,
		To:           out.To,
		Subject:      out.Subject,
		Body:         out.Body,
		Attachment:   out.Attachment,
		ScheduleTime: scheduleTime,
	}
	return c.postJSON(ctx, path, req, nil)
}

// SaveTemplate stores a reusable subject and body under a name.
func (c *Client) SaveTemplate(ctx context.Context, tpl mailbox.Template) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	req := templateRequest{Token: tok, Name: tpl.Name, Subject: tpl.Subject, Body: tpl.Body}
	return c.postJSON(ctx, "/save_template", req, nil)
}

// BulkAction applies action to every message in one call.
func (c *Client) BulkAction(ctx context.Context, action mailbox.BulkAction, msgs []mailbox.Message, folder mailbox.Folder) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	emails := make([]wireMessage, len(msgs))
	for i, m := range msgs {
		emails[i] = toWire(m)
	}
	req := bulkRequest{Token: tok, Action: string(action), Emails: emails, Folder: string(folder)}
	return c.postJSON(ctx, "/bulk_action", req, nil)
}

// Upload stores a file and returns the reference the service assigned to it.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	tok, err := c.token()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.WriteField("token", tok); err != nil {
		return "", fmt.Errorf("write token field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/upload", w.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", &APIError{Status: http.StatusOK, Message: "upload returned no url"}
	}
	return resp.URL, nil
}

// Recipients fetches the autocomplete source.
func (c *Client) Recipients(ctx context.Context) ([]string, error) {
	var resp struct {
		Recipients []string `json:"recipients"`
	}
	if err := c.getJSON(ctx, "/recipients", &resp); err != nil {
		return nil, err
	}
	return resp.Recipients, nil
}

// Stats fetches the account summary.
func (c *Client) Stats(ctx context.Context) (*mailbox.Stats, error) {
	var stats mailbox.Stats
	if err := c.getJSON(ctx, "/stats/"+url.PathEscape(c.accountID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Storage fetches the quota summary.
func (c *Client) Storage(ctx context.Context) (*mailbox.Storage, error) {
	var storage mailbox.Storage
	if err := c.getJSON(ctx, "/storage/"+url.PathEscape(c.accountID), &storage); err != nil {
		return nil, err
	}
	return &storage, nil
}

// Logout invalidates the session token on the server.
func (c *Client) Logout(ctx context.Context) error {
	tok, err := c.token()
	if err != nil {
		return err
	}
	return c.postJSON(ctx, "/logout", tokenRequest{Token: tok}, nil)
}
