package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	to, subject, body string
}

func newTestService(cfg *config.EmailConfig) (*NotificationService, *[]sent) {
	var outbox []sent
	n := New(cfg, "https://keepsake.example")
	n.send = func(to, subject, body string) error {
		outbox = append(outbox, sent{to: to, subject: subject, body: body})
		return nil
	}
	return n, &outbox
}

func TestNotifyLogin_Disabled(t *testing.T) {
	n, outbox := newTestService(&config.EmailConfig{Enabled: false})
	require.NoError(t, n.NotifyLogin(context.Background(), auth.User{ID: 1, Username: "GEET"}, time.Now()))
	assert.Empty(t, *outbox)

	nilCfg := New(nil, "")
	assert.NoError(t, nilCfg.NotifyLogin(context.Background(), auth.User{}, time.Now()))
}

func TestNotifyLogin_Sends(t *testing.T) {
	n, outbox := newTestService(&config.EmailConfig{Enabled: true, To: "me@example.com"})
	at := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, n.NotifyLogin(context.Background(), auth.User{ID: 1, Username: "GEET"}, at))
	require.Len(t, *outbox, 1)

	msg := (*outbox)[0]
	assert.Equal(t, "me@example.com", msg.to)
	assert.Equal(t, "[Keepsake] GEET signed in", msg.subject)
	assert.Contains(t, msg.body, "<strong>GEET</strong>")
	assert.Contains(t, msg.body, "Sat, 14 Feb 2026 09:30 UTC")
	assert.Contains(t, msg.body, "https://keepsake.example")
}

func TestNotifyLogin_EscapesUsername(t *testing.T) {
	n, outbox := newTestService(&config.EmailConfig{Enabled: true, To: "me@example.com"})

	require.NoError(t, n.NotifyLogin(context.Background(), auth.User{Username: "<script>"}, time.Now()))
	require.Len(t, *outbox, 1)
	assert.NotContains(t, (*outbox)[0].body, "<script>")
}

func TestNotifyLogin_SendError(t *testing.T) {
	n, _ := newTestService(&config.EmailConfig{Enabled: true, To: "me@example.com"})
	n.send = func(string, string, string) error { return errors.New("smtp down") }

	assert.EqualError(t, n.NotifyLogin(context.Background(), auth.User{Username: "GEET"}, time.Now()), "smtp down")
}

func TestNotifyLogin_CancelledContext(t *testing.T) {
	n, outbox := newTestService(&config.EmailConfig{Enabled: true, To: "me@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.NotifyLogin(ctx, auth.User{Username: "GEET"}, time.Now()), context.Canceled)
	assert.Empty(t, *outbox)
}
