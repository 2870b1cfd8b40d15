package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/config"
)

func TestResendTransport(t *testing.T) {
	var got resendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewResendTransport("re_test", "TickBug <bugs@example.com>", server.Client()).WithEndpoint(server.URL)
	err := tr.Send(context.Background(), Message{To: "ada@example.com", Subject: "Assigned", HTML: "<p>hi</p>", Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Assigned", got.Subject)
	assert.Equal(t, "hi", got.Text)
}

func TestResendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	tr := NewResendTransport("re_test", "bugs@example.com", server.Client()).WithEndpoint(server.URL)
	err := tr.Send(context.Background(), Message{To: "ada@example.com"})
	assert.ErrorContains(t, err, "status 422")
}

func TestSMTPTransportBuildsMultipart(t *testing.T) {
	tr := NewSMTPTransport("smtp.example.com", 2525, "user", "pass", "TickBug <bugs@example.com>")

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	tr.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := tr.Send(context.Background(), Message{To: "ada@example.com", Subject: "Status changed", HTML: "<b>done</b>", Text: "done"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "bugs@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "multipart/alternative")
	assert.Contains(t, gotMsg, "text/plain")
	assert.Contains(t, gotMsg, "<b>done</b>")
	assert.True(t, strings.HasPrefix(gotMsg, "From: TickBug <bugs@example.com>\r\n"))
}

func TestNewSelectsTransport(t *testing.T) {
	tr, err := New(&config.Config{MailTransport: config.MailLog}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogTransport{}, tr)

	tr, err = New(&config.Config{MailTransport: config.MailSMTP, SMTPHost: "h", SMTPPort: 25}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPTransport{}, tr)

	_, err = New(&config.Config{MailTransport: "pigeon"}, nil)
	assert.Error(t, err)
}
