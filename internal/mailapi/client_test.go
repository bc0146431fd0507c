package mailapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSession = auth.Session{AccountID: "a@x.com", Token: "tok-123"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()}, testSession)
	require.NoError(t, err)
	return c
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		sess    auth.Session
		wantErr string
	}{
		{"empty url", Config{}, testSession, "server URL is required"},
		{"bad scheme", Config{BaseURL: "ftp://mail"}, testSession, "scheme must be http or https"},
		{"no host", Config{BaseURL: "http://"}, testSession, "must include a host"},
		{"no token", Config{BaseURL: "http://mail"}, auth.Session{AccountID: "a"}, "session token cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.sess)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestListFolder_Inbox(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/inbox/a@x.com", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"inbox":[{"id":7,"from":"a@x.com","to":"b@x.com","subject":"Hi","body":"x","message_status":"unread","date_of_send":"2024-01-01T10:00:00Z","attachment":null}]}`)
	})

	msgs, err := c.ListFolder(context.Background(), mailbox.Inbox)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "7", msgs[0].ID)
	assert.Equal(t, mailbox.Inbox, msgs[0].Folder)
	assert.Equal(t, mailbox.StatusUnread, msgs[0].Status)
	assert.Equal(t, "2024-01-01T10:00:00Z", msgs[0].SentAt)
	assert.Empty(t, msgs[0].Attachment)
}

func TestListFolder_TrashKeepsOrigin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"trash":[{"from":"me","to":"you","subject":"s","body":"","original_folder":"sent"}]}`)
	})

	msgs, err := c.ListFolder(context.Background(), mailbox.Trash)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, mailbox.Sent, msgs[0].Origin())
}

func TestListFolder_ScheduledPostsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scheduled", r.URL.Path)
		assert.Equal(t, "tok-123", decodeBody(t, r)["token"])
		_, _ = io.WriteString(w, `{"scheduled":[{"from":"me","to":"you","subject":"later","body":"","scheduled_date":"2030-01-01T09:00:00"}]}`)
	})

	msgs, err := c.ListFolder(context.Background(), mailbox.Scheduled)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "2030-01-01T09:00:00", msgs[0].ScheduledFor)
}

func TestListFolder_Templates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/a@x.com", r.URL.Path)
		_, _ = io.WriteString(w, `{"templates":[{"name":"weekly","subject":"Report","body":"Hello"}]}`)
	})

	_, err := c.ListFolder(context.Background(), mailbox.Templates)
	assert.Error(t, err)

	tpls, err := c.ListTemplates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []mailbox.Template{{Name: "weekly", Subject: "Report", Body: "Hello"}}, tpls)
}

func TestMarkRead_SendsMailAndTab(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mark_read", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "tok-123", body["token"])
		assert.Equal(t, "inbox", body["activeTab"])
		mail := body["mail"].(map[string]any)
		assert.Equal(t, "Hi", mail["subject"])
		assert.Equal(t, "2024-01-01T10:00:00Z", mail["date_of_send"])
		assert.NotContains(t, mail, "id")
		_, _ = io.WriteString(w, `{"message":"Email marked as read"}`)
	})

	m := mailbox.Message{From: "a@x.com", To: "b@x.com", Subject: "Hi", SentAt: "2024-01-01T10:00:00Z", Folder: mailbox.Inbox}
	assert.NoError(t, c.MarkRead(context.Background(), m, mailbox.Inbox))
}

func TestDeleteMail_Scheduled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/delete_mail", r.URL.Path)
		assert.Equal(t, "scheduled", decodeBody(t, r)["activeTab"])
		_, _ = io.WriteString(w, `{"message":"Deleted successfully"}`)
	})

	m := mailbox.Message{Subject: "later", ScheduledFor: "2030-01-01T09:00:00", Folder: mailbox.Scheduled}
	assert.NoError(t, c.DeleteMail(context.Background(), m, mailbox.Scheduled))
}

func TestRestore_SendsOriginalFolder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/restore_email", r.URL.Path)
		mail := decodeBody(t, r)["mail"].(map[string]any)
		assert.Equal(t, "sent", mail["original_folder"])
	})

	m := mailbox.Message{Subject: "s", Folder: mailbox.Trash, OriginFolder: mailbox.Sent}
	assert.NoError(t, c.Restore(context.Background(), m))
}

func TestSchedule_FormatsTimeAsUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2030, 6, 1, 10, 30, 0, 0, loc)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "2030-06-01T09:30:00.000Z", body["scheduleTime"])
		assert.Equal(t, "b@x.com", body["to"])
		_, _ = io.WriteString(w, `{"message":"Email scheduled successfully"}`)
	})

	err := c.Schedule(context.Background(), mailbox.Outgoing{To: "b@x.com", Subject: "s"}, at)
	assert.NoError(t, err)
}

func TestSend_ErrorFieldIsRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"Recipient not found"}`)
	})

	err := c.Send(context.Background(), mailbox.Outgoing{To: "ghost@x.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Recipient not found", apiErr.Message)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestNon2xxIsRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Invalid session"}`)
	})

	err := c.SaveDraft(context.Background(), mailbox.Outgoing{To: "b@x.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, err.Error(), "Invalid session")
}

func TestNon2xxPlainText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.PermanentDelete(context.Background(), mailbox.Message{Folder: mailbox.Trash})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()}, testSession)
	require.NoError(t, err)
	srv.Close()

	_, err = c.ListFolder(context.Background(), mailbox.Sent)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestMalformedJSONIsTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"drafts": [`)
	})

	_, err := c.ListFolder(context.Background(), mailbox.Drafts)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestBulkAction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "mark_read", body["action"])
		assert.Equal(t, "inbox", body["folder"])
		assert.Len(t, body["emails"], 2)
		_, _ = io.WriteString(w, `{"message":"Bulk action completed on 2 emails"}`)
	})

	msgs := []mailbox.Message{{Subject: "a"}, {Subject: "b"}}
	assert.NoError(t, c.BulkAction(context.Background(), mailbox.BulkMarkRead, msgs, mailbox.Inbox))
}

func TestUpload_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "tok-123", r.FormValue("token"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "report.pdf", hdr.Filename)
		assert.Equal(t, "pdf-bytes", string(data))
		_, _ = io.WriteString(w, `{"url":"/files/report.pdf"}`)
	})

	url, err := c.Upload(context.Background(), "report.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/files/report.pdf", url)
}

func TestUpload_MissingURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := c.Upload(context.Background(), "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no url")
}

func TestRecipientsStatsStorage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipients":
			_, _ = io.WriteString(w, `{"recipients":["a@x.com","b@x.com"]}`)
		case "/stats/a@x.com":
			_, _ = io.WriteString(w, `{"total_received":3,"total_sent":1,"unread_count":2,"deleted_count":0,"draft_count":1,"storage_used":{"used_mb":1.5,"total_mb":8,"percentage":18.75,"status":"ok"}}`)
		case "/storage/a@x.com":
			_, _ = io.WriteString(w, `{"used_mb":1.5,"total_mb":8,"percentage":18.75,"status":"ok"}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	rcpts, err := c.Recipients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, rcpts)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UnreadCount)
	assert.Equal(t, 8.0, stats.Storage.TotalMB)

	storage, err := c.Storage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", storage.Status)
}

func TestFlexibleID(t *testing.T) {
	var w struct {
		ID flexibleID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc"}`), &w))
	assert.Equal(t, flexibleID("abc"), w.ID)
	require.NoError(t, json.Unmarshal([]byte(`{"id":12}`), &w))
	assert.Equal(t, flexibleID("12"), w.ID)

	var empty struct {
		ID flexibleID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &empty))
	assert.Equal(t, flexibleID(""), empty.ID)
}
