package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerRepositoriesFiltered(2, "/export.csv?q=bot").
		TriggerErrorNotification("boom").
		Write(w)

	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	filtered := triggers[EventRepositoriesFiltered]
	if filtered["count"] != float64(2) || filtered["export_url"] != "/export.csv?q=bot" {
		t.Errorf("unexpected %s payload: %v", EventRepositoriesFiltered, filtered)
	}
	note := triggers[EventShowNotification]
	if note["type"] != "error" || note["message"] != "boom" || note["duration"] != float64(5000) {
		t.Errorf("unexpected notification payload: %v", note)
	}
}

func TestHTMXResponseBuilder_BodyHTMLAndPushURL(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		BodyHTML([]byte("<p>x</p>")).
		PushURL("/?q=bot").
		Write(w)

	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Header().Get("HX-Push-Url"); got != "/?q=bot" {
		t.Errorf("HX-Push-Url = %q", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name string
		b    *HTMXResponseBuilder
		code int
	}{
		{"internal", InternalServerError("<bad>"), http.StatusInternalServerError},
		{"unavailable", ServiceUnavailableError("down"), http.StatusServiceUnavailable},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.b.Write(w)
			if w.Code != tt.code {
				t.Errorf("code = %d, want %d", w.Code, tt.code)
			}
			if !strings.HasPrefix(w.Body.String(), `<div class="error">`) {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	InternalServerError("<bad>").Write(w)
	if strings.Contains(w.Body.String(), "<bad>") {
		t.Error("message must be escaped")
	}
}
