package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/upstream"
)

func TestSendPayload(t *testing.T) {
	var (
		gotKey  string
		gotBody sendRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/smtp/email", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", "noreply@campuspulse.example", "CampusPulse", 100, 10)
	err := c.Send(context.Background(), "student@ue-germany.de", "CampusPulse daily reminder", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, "noreply@campuspulse.example", gotBody.Sender.Email)
	assert.Equal(t, "CampusPulse", gotBody.Sender.Name)
	require.Len(t, gotBody.To, 1)
	assert.Equal(t, "student@ue-germany.de", gotBody.To[0].Email)
	assert.Equal(t, "CampusPulse daily reminder", gotBody.Subject)
	assert.Equal(t, "<p>hi</p>", gotBody.HTMLContent)
}

func TestSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid sender"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key", "noreply@campuspulse.example", "CampusPulse", 100, 10)
	err := c.Send(context.Background(), "student@ue-germany.de", "subject", "<p>hi</p>")
	require.Error(t, err)

	ue, ok := upstream.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, ue.Status)
	assert.Contains(t, ue.Body, "invalid sender")
}

func TestSendUnconfigured(t *testing.T) {
	c := NewClient("http://localhost", "", "", "CampusPulse", 100, 10)
	err := c.Send(context.Background(), "student@ue-germany.de", "subject", "<p>hi</p>")
	assert.Error(t, err)
}
