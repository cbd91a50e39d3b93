package telegram

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestQuizCallbackRoundTrip(t *testing.T) {
	const sessionID = "0f8fad5b-d9cb-469f-a165-70867728950e"

	tests := []struct {
		name  string
		data  string
		want  quizCallback
		valid bool
	}{
		{
			name:  "pick",
			data:  buildQuizCallback(quizPick, sessionID, 12, "C"),
			want:  quizCallback{Sub: quizPick, Token: "0f8fad5b", Index: 12, Label: "C"},
			valid: true,
		},
		{
			name:  "next",
			data:  buildQuizCallback(quizNext, sessionID, 0),
			want:  quizCallback{Sub: quizNext, Token: "0f8fad5b", Index: 0},
			valid: true,
		},
		{name: "pick without label", data: "q:p:0f8fad5b:3"},
		{name: "next with label", data: "q:n:0f8fad5b:3:A"},
		{name: "negative index", data: "q:n:0f8fad5b:-1"},
		{name: "bad index", data: "q:n:0f8fad5b:x"},
		{name: "unknown sub", data: "q:z:0f8fad5b:1"},
		{name: "other action", data: "settings:lang:pt"},
		{name: "empty", data: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.data) > 64 {
				t.Fatalf("callback data %q exceeds 64 bytes", tc.data)
			}

			got, ok := parseQuizCallback(decodeCallback(tc.data))
			if ok != tc.valid {
				t.Fatalf("parseQuizCallback(%q) ok = %v, want %v", tc.data, ok, tc.valid)
			}
			if got != tc.want {
				t.Fatalf("parseQuizCallback(%q) = %+v, want %+v", tc.data, got, tc.want)
			}
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	cd := decodeCallback(buildSettingsCallback(settingsCert, "saa-c03"))
	if cd.Action != actionSettings || len(cd.Params) != 2 || cd.Params[0] != settingsCert || cd.Params[1] != "saa-c03" {
		t.Fatalf("decodeCallback() = %+v", cd)
	}

	if cd := decodeCallback(buildStartCallback("exam")); cd.Action != actionStart || cd.Params[0] != "exam" {
		t.Fatalf("decodeCallback() = %+v", cd)
	}

	if cd := decodeCallback(""); cd.Action != "" {
		t.Fatalf("decodeCallback(\"\") action = %q", cd.Action)
	}
}

func TestSessionToken(t *testing.T) {
	if got := sessionToken("abc"); got != "abc" {
		t.Fatalf("sessionToken(short) = %q", got)
	}
	if got := sessionToken("0123456789"); got != "01234567" {
		t.Fatalf("sessionToken(long) = %q", got)
	}
}

func TestIsBlocked(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "forbidden", err: &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}, want: true},
		{name: "wrapped", err: fmt.Errorf("send: %w", &tgbotapi.Error{Code: 403}), want: true},
		{name: "rate limited", err: &tgbotapi.Error{Code: 429}},
		{name: "other", err: errors.New("timeout")},
		{name: "nil"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isBlocked(tc.err); got != tc.want {
				t.Fatalf("isBlocked(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
