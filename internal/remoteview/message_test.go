package remoteview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livestyle/internal/model"
)

func TestLocalURL(t *testing.T) {
	tests := []struct {
		name, origin, url, expected string
	}{
		{"file url with backslash", "file:///Users/me/site/", `file:///Users/me/site/css\style.css`, "http://livestyle/css/style.css"},
		{"empty segments dropped", "file:///site", "file:///site//a///b.html", "http://livestyle/a/b.html"},
		{"origin itself", "file:///site/", "file:///site/", "http://livestyle/"},
		{"http passes through", "http://localhost:8080", "http://localhost:8080/index.html", "http://localhost:8080/index.html"},
		{"file outside origin", "file:///other/", "file:///site/index.html", "file:///site/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocalURL(tt.origin, tt.url))
		})
	}
}

func TestDeriveMessage(t *testing.T) {
	withError := func(code, msg string) *model.Model {
		return &model.Model{RemoteView: model.RemoteViewSession{
			State: model.StateError,
			Error: &model.RemoteViewError{Code: code, Message: msg},
		}}
	}

	tests := []struct {
		name     string
		model    *model.Model
		expected Message
	}{
		{"nil model", nil, NoticeDefault},
		{"unset", &model.Model{}, NoticeDefault},
		{"unknown state", &model.Model{RemoteView: model.RemoteViewSession{State: "closing"}}, NoticeDefault},
		{"pending", &model.Model{RemoteView: model.RemoteViewSession{State: model.StatePending}}, NoticeConnecting},
		{"no app", withError("ENOAPP", ""), NoticeNoApp},
		{"no origin", withError("ERVNOORIGIN", ""), NoticeNoOrigin},
		{"invalid origin", withError("ERVINVALIDORIGIN", ""), NoticeUnavailable},
		{"other error", withError("EOTHER", "boom"), Failure{Code: "EOTHER", Message: "boom"}},
		{
			"connected",
			&model.Model{
				Origin: "file:///Users/me/site/",
				URL:    "file:///Users/me/site/index.html",
				RemoteView: model.RemoteViewSession{
					State:    model.StateConnected,
					PublicID: "abc.livestyle.io",
				},
			},
			Connected{
				Origin:    "file:///Users/me/site/",
				LocalURL:  "http://livestyle/index.html",
				PublicURL: "http://abc.livestyle.io",
				PublicID:  "abc.livestyle.io",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveMessage(tt.model))
		})
	}
}

func TestFailureName(t *testing.T) {
	msg := DeriveMessage(&model.Model{RemoteView: model.RemoteViewSession{
		State: model.StateError,
		Error: &model.RemoteViewError{Code: "EOTHER", Message: "boom"},
	}})
	assert.Equal(t, "error", msg.Name())
	assert.Equal(t, map[string]any{"name": "error", "code": "EOTHER", "message": "boom"}, Encode(msg))
}

func TestEncodeDecode(t *testing.T) {
	for _, m := range []Message{
		NoticeConnecting,
		Connected{Origin: "o", LocalURL: "l", PublicURL: "http://p", PublicID: "p"},
		Failure{Code: "E", Message: "m"},
	} {
		got, err := Decode(Encode(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestDecodeYAMLMap(t *testing.T) {
	got, err := Decode(map[any]any{"name": "error", "code": "EX"})
	require.NoError(t, err)
	assert.Equal(t, Failure{Code: "EX"}, got)
}

func TestDecodeErrors(t *testing.T) {
	for name, v := range map[string]any{
		"nil":          nil,
		"number":       42,
		"no name":      map[string]any{"code": "E"},
		"unknown name": map[string]any{"name": "weird"},
		"bad field":    map[string]any{"name": "error", "code": 7},
		"bad key":      map[any]any{1: "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(v)
			assert.Error(t, err)
		})
	}
}
