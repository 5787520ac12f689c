package messenger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slack-go/slack"
)

func TestPost(t *testing.T) {
	var gotChannel, gotText, gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "chat.postMessage") {
			t.Errorf("path = %q, want chat.postMessage", r.URL.Path)
		}
		_ = r.ParseForm()
		gotToken = r.Form.Get("token")
		gotChannel = r.Form.Get("channel")
		gotText = r.Form.Get("text")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "channel": "C099", "ts": "1700000000.000100"}`))
	}))
	defer ts.Close()

	p := NewSlackPoster("xoxb-test", slack.OptionAPIURL(ts.URL+"/"))
	if err := p.Post(context.Background(), "C099", "hello there"); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	if gotChannel != "C099" {
		t.Errorf("channel = %q, want C099", gotChannel)
	}
	if gotText != "hello there" {
		t.Errorf("text = %q, want %q", gotText, "hello there")
	}
	if gotToken != "xoxb-test" {
		t.Errorf("token = %q, want xoxb-test", gotToken)
	}
}

func TestPost_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer ts.Close()

	p := NewSlackPoster("xoxb-test", slack.OptionAPIURL(ts.URL+"/"))
	err := p.Post(context.Background(), "C000", "hi")
	if err == nil {
		t.Fatal("Post() should surface API errors")
	}
	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("error = %v, want channel_not_found", err)
	}
}
