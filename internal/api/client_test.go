package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// fakeTokens is a static TokenSource.
type fakeTokens struct {
	token string
	ok    bool
}

func (f fakeTokens) CurrentToken() (string, bool) { return f.token, f.ok }

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	if _, err := New("not-a-url", fakeTokens{}); err == nil {
		t.Fatalf("expected error for relative base URL")
	}
	if _, err := New("http://ok.example", fakeTokens{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_SetsHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, err := New(ts.URL, fakeTokens{token: "tok-1", ok: true}, WithUserAgent("test-agent"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.Get(context.Background(), "/users/me"); err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Get("Authorization") != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", got.Get("Authorization"))
	}
	if got.Get("Accept") != "application/json" {
		t.Fatalf("expected Accept header, got %q", got.Get("Accept"))
	}
	if got.Get("User-Agent") != "test-agent" {
		t.Fatalf("expected custom user agent, got %q", got.Get("User-Agent"))
	}
}

func TestDo_NoAuthorizationWithoutToken(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, _ := New(ts.URL, fakeTokens{})
	if _, err := c.Get(context.Background(), "/chats"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no Authorization header, got %q", got)
	}
}

func TestPostForm_ContentType(t *testing.T) {
	var ct, body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err == nil {
			body = r.PostForm.Encode()
		}
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, _ := New(ts.URL, fakeTokens{})
	form := url.Values{}
	form.Set("username", "alice")
	if _, err := c.PostForm(context.Background(), "/auth/token", form); err != nil {
		t.Fatalf("post form: %v", err)
	}
	if ct != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if body != "username=alice" {
		t.Fatalf("unexpected form body %q", body)
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listens anymore

	c, _ := New(ts.URL, fakeTokens{})
	_, err := c.Get(context.Background(), "/chats")
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if ae.Message != "Network error or server is unreachable." {
		t.Fatalf("unexpected message %q", ae.Message)
	}
	if ae.Unwrap() == nil {
		t.Fatalf("expected the transport error to be wrapped")
	}
}

func TestDecodeError(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
		wantFld  string
	}{
		{
			name:     "401 with description",
			status:   401,
			body:     `{"detail":{"error_description":"invalid credentials"}}`,
			wantKind: KindUnauthenticated,
			wantMsg:  "invalid credentials",
		},
		{
			name:     "401 with empty body is still unauthenticated",
			status:   401,
			body:     ``,
			wantKind: KindUnauthenticated,
			wantMsg:  "Unknown error occurred.",
		},
		{
			name:     "duplicate value names the field",
			status:   409,
			body:     `{"detail":{"type":"duplicate_value","entity_name":"User","entity_field":"username"}}`,
			wantKind: KindValidation,
			wantMsg:  "username already taken",
			wantFld:  "username",
		},
		{
			name:     "string detail used verbatim",
			status:   429,
			body:     `{"detail":"rate limit exceeded"}`,
			wantKind: KindValidation,
			wantMsg:  "rate limit exceeded",
		},
		{
			name:     "entity not found",
			status:   404,
			body:     `{"detail":{"type":"entity_not_found","entity_name":"Chat"}}`,
			wantKind: KindValidation,
			wantMsg:  "Chat not found",
		},
		{
			name:     "msg fallback",
			status:   400,
			body:     `{"detail":{"msg":"text must not be empty"}}`,
			wantKind: KindValidation,
			wantMsg:  "text must not be empty",
		},
		{
			name:     "5xx",
			status:   503,
			body:     `{"detail":"upstream down"}`,
			wantKind: KindServer,
			wantMsg:  "upstream down",
		},
		{
			name:     "4xx with malformed body degrades to server",
			status:   400,
			body:     `<html>bad gateway</html>`,
			wantKind: KindServer,
			wantMsg:  "Unknown error occurred.",
		},
		{
			name:     "4xx without detail degrades to server",
			status:   418,
			body:     `{}`,
			wantKind: KindServer,
			wantMsg:  "Unknown error occurred.",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := decodeError(c.status, []byte(c.body))
			if e.Kind != c.wantKind {
				t.Fatalf("kind = %q, want %q", e.Kind, c.wantKind)
			}
			if e.Message != c.wantMsg {
				t.Fatalf("message = %q, want %q", e.Message, c.wantMsg)
			}
			if e.Field != c.wantFld {
				t.Fatalf("field = %q, want %q", e.Field, c.wantFld)
			}
			if e.Status != c.status {
				t.Fatalf("status = %d, want %d", e.Status, c.status)
			}
		})
	}
}

func TestResponse_DecodeJSON(t *testing.T) {
	r := &Response{Body: []byte(`{"a":1}`)}
	var v map[string]int
	if err := r.DecodeJSON(&v); err != nil || v["a"] != 1 {
		t.Fatalf("decode: %v %v", err, v)
	}
	r = &Response{Body: []byte(`nope`)}
	if err := r.DecodeJSON(&v); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestIsUnauthenticated(t *testing.T) {
	if !IsUnauthenticated(decodeError(401, nil)) {
		t.Fatalf("401 must be unauthenticated")
	}
	if IsUnauthenticated(decodeError(500, nil)) {
		t.Fatalf("500 must not be unauthenticated")
	}
	if IsUnauthenticated(errors.New("nope")) {
		t.Fatalf("foreign errors must not match")
	}
}
