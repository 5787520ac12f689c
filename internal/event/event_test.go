package event

import (
	"testing"
)

func TestParse_Permissive(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want Type
	}{
		{name: "empty body", body: nil, want: TypeOther},
		{name: "malformed json", body: []byte(`{"type": "event_call`), want: TypeOther},
		{name: "not an object", body: []byte(`[1,2,3]`), want: TypeOther},
		{name: "unknown type", body: []byte(`{"type":"app_rate_limited"}`), want: TypeOther},
		{name: "url verification", body: []byte(`{"type":"url_verification","challenge":"abc"}`), want: TypeURLVerification},
		{name: "event callback", body: []byte(`{"type":"event_callback","event":{}}`), want: TypeEventCallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Parse(tt.body)
			if got := env.Classify(); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_EventFields(t *testing.T) {
	body := []byte(`{
		"type": "event_callback",
		"event_id": "Ev123",
		"event": {
			"type": "app_mention",
			"user": "U042",
			"channel": "C099",
			"text": "<@UBOT> ping"
		}
	}`)

	env := Parse(body)
	if env.Event.User != "U042" {
		t.Errorf("User = %q, want U042", env.Event.User)
	}
	if env.Event.Channel != "C099" {
		t.Errorf("Channel = %q, want C099", env.Event.Channel)
	}
	if env.Event.Text != "<@UBOT> ping" {
		t.Errorf("Text = %q", env.Event.Text)
	}
	if env.Event.FromBot() {
		t.Error("FromBot() = true for human sender")
	}
}

func TestFromBot(t *testing.T) {
	env := Parse([]byte(`{"type":"event_callback","event":{"bot_id":"B001","text":"hi"}}`))
	if !env.Event.FromBot() {
		t.Error("FromBot() = false, want true")
	}
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "leading mention", in: "<@U123> hello there", want: "hello there"},
		{name: "no mention", in: "hello there", want: "hello there"},
		{name: "mention only", in: "<@U123>", want: ""},
		{name: "extra whitespace", in: "  <@U123>   ping  ", want: "ping"},
		{name: "mention mid-text", in: "ask <@U123> about it", want: "about it"},
		{name: "marker without close", in: "stray <@ marker", want: "stray <@ marker"},
		{name: "angle bracket without marker", in: "a > b", want: "a > b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMention(tt.in); got != tt.want {
				t.Errorf("StripMention(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
