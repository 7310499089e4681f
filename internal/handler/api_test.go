// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/charity-cms/internal/model"
)

func decodeJSON(t *testing.T, body string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), v); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, body)
	}
}

func TestAPIContent(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	_, err := env.store.AddInquiry(context.Background(), model.InquiryInput{Name: "Mina", Email: "m@example.org", Message: "Hi"})
	if err != nil {
		t.Fatalf("AddInquiry() error = %v", err)
	}

	t.Run("visitors get the public subset", func(t *testing.T) {
		rr := env.get(t, "/api/content", false)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		var got map[string]json.RawMessage
		decodeJSON(t, rr.Body.String(), &got)
		for _, key := range []string{"programs", "events", "blogPosts", "gallery", "reports", "settings"} {
			if _, ok := got[key]; !ok {
				t.Errorf("missing %q", key)
			}
		}
		for _, key := range []string{"volunteers", "donations", "inquiries"} {
			if _, ok := got[key]; ok {
				t.Errorf("private %q exposed", key)
			}
		}
	})

	t.Run("admins get everything", func(t *testing.T) {
		rr := env.get(t, "/api/content", true)
		var got model.SiteContent
		decodeJSON(t, rr.Body.String(), &got)
		if len(got.Inquiries) != 1 {
			t.Errorf("inquiries = %d, want 1", len(got.Inquiries))
		}
	})
}

func TestAPICollection(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	_, err := env.store.Mutate(context.Background(), func(doc *model.SiteContent) bool {
		doc.Programs[1].Active = false
		return true
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	tests := []struct {
		name       string
		path       string
		admin      bool
		wantStatus int
	}{
		{"public collection", "/api/content/events", false, http.StatusOK},
		{"private collection needs admin", "/api/content/volunteers", false, http.StatusUnauthorized},
		{"private collection for admin", "/api/content/volunteers", true, http.StatusOK},
		{"unknown collection", "/api/content/sponsors", true, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := env.get(t, tt.path, tt.admin); rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}

	t.Run("inactive programs are hidden from visitors", func(t *testing.T) {
		var visitor, admin []model.Program
		decodeJSON(t, env.get(t, "/api/content/programs", false).Body.String(), &visitor)
		decodeJSON(t, env.get(t, "/api/content/programs", true).Body.String(), &admin)
		if len(admin) != len(visitor)+1 {
			t.Errorf("visitor sees %d programs, admin %d", len(visitor), len(admin))
		}
		for _, p := range visitor {
			if p.ID == "p2" {
				t.Error("inactive program p2 is public")
			}
		}
	})
}

func TestAPISchema(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rr := env.get(t, "/api/schema", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got map[string]any
	decodeJSON(t, rr.Body.String(), &got)
	if got["$id"] != model.SchemaID {
		t.Errorf("$id = %v", got["$id"])
	}
	props, _ := got["properties"].(map[string]any)
	if _, ok := props["programs"]; !ok {
		t.Error("schema has no programs property")
	}
}

func TestAPIChanges(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	api := NewAPIHandler(env.store, env.sm)
	api.heartbeat = 50 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(api.Changes))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if ct := resp.Header.Get(HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) {
		t.Helper()
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
	}

	readUntil("retry:")
	readUntil(": ping")

	go func() {
		_ = env.store.UpdateSettings(context.Background(), model.SiteSettings{HeroText: "Changed"})
	}()
	readUntil("event: changed")
	if !lines.Scan() || lines.Text() != "data:" {
		t.Errorf("changed event data = %q, want an empty data line", lines.Text())
	}
}
