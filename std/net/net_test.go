package net

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		uri       string
		body      string
		mediaType string
		wantErr   bool
	}{
		{"data:text/css,p%20%7Bcolor:red%7D", "p {color:red}", "text/css", false},
		{"data:image/png;base64,aGVsbG8=", "hello", "image/png", false},
		{"DATA:,plain", "plain", "text/plain;charset=US-ASCII", false},
		{"data:image/png;base64", "", "", true},
		{"data:image/png;base64,!!!", "", "", true},
		{"http://example.com/a.png", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			body, mt, err := DecodeDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if string(body) != tt.body || mt != tt.mediaType {
				t.Errorf("got (%q, %q), want (%q, %q)", body, mt, tt.body, tt.mediaType)
			}
		})
	}
	if _, _, err := DecodeDataURI("/x.png"); !errors.Is(err, ErrNotDataURI) {
		t.Errorf("expected ErrNotDataURI, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	if got := ResolveURL("http://example.com/a/b.html", "img/c.png"); got != "http://example.com/a/img/c.png" {
		t.Errorf("relative resolution = %q", got)
	}
	if got := ResolveURL("http://example.com/", "https://other.org/x"); got != "https://other.org/x" {
		t.Errorf("absolute ref = %q", got)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, ct, err := Fetch(context.Background(), srv.URL+"/x")
	if err != nil || string(body) != "ok" || ct != "text/plain" {
		t.Errorf("Fetch = (%q, %q, %v)", body, ct, err)
	}
	if _, _, err := Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected an error for 404")
	}
}
