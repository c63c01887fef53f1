package handler

import (
	"net/http"
	"strings"
	"testing"

	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/ai"
)

func TestCallWebhookSignature(t *testing.T) {
	ts := newTestServer(t)
	body := `{"call_id":"c-1","transcription":"[Speaker 1]: hello"}`

	rec := ts.do(http.MethodPost, "/api/webhooks/calls", "", body, ai.SignatureHeader, "deadbeef")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature: got %d", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/api/webhooks/calls", "", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing signature: got %d", rec.Code)
	}
	if len(ts.insights.ingested) != 0 {
		t.Fatal("unsigned webhook must not ingest")
	}

	rec = ts.do(http.MethodPost, "/api/webhooks/calls", "", body, ai.SignatureHeader, "sha256="+ai.Sign(webhookSecret, []byte(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("signed: got %d %s", rec.Code, rec.Body.String())
	}
	if len(ts.insights.ingested) != 1 {
		t.Fatalf("ingested: got %d", len(ts.insights.ingested))
	}
	got := ts.insights.ingested[0]
	if got.CallID != "c-1" || got.Transcription == nil || *got.Transcription != "[Speaker 1]: hello" {
		t.Errorf("call log: %+v", got)
	}
}

func TestCallWebhookPayloads(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"transcript document", `{"call_id":"c-2","organization_id":"11111111-1111-1111-1111-111111111111","transcription":{"transcript":[{"speaker":"Speaker 1","text":"hi"}]}}`, http.StatusAccepted},
		{"recording only", `{"call_id":"c-3","recording_url":"https://example.com/c3.mp3"}`, http.StatusAccepted},
		{"nothing to analyze", `{"call_id":"c-4"}`, http.StatusBadRequest},
		{"missing call id", `{"transcription":"hi"}`, http.StatusBadRequest},
		{"bad organization", `{"call_id":"c-5","organization_id":"x","transcription":"hi"}`, http.StatusBadRequest},
		{"not json", `call`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(http.MethodPost, "/api/webhooks/calls", "", tt.body, ai.SignatureHeader, ai.Sign(webhookSecret, []byte(tt.body)))
			if rec.Code != tt.status {
				t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCallWebhookQueueFull(t *testing.T) {
	ts := newTestServer(t)
	ts.insights.ingestErr = usecaseErrors.ErrQueueFull
	body := `{"call_id":"c-1","transcription":"hi"}`

	rec := ts.do(http.MethodPost, "/api/webhooks/calls", "", body, ai.SignatureHeader, ai.Sign(webhookSecret, []byte(body)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestCallWebhookOversizedBody(t *testing.T) {
	ts := newTestServer(t)
	body := `{"call_id":"c-1","transcription":"` + strings.Repeat("a", maxWebhookBody) + `"}`

	rec := ts.do(http.MethodPost, "/api/webhooks/calls", "", body, ai.SignatureHeader, ai.Sign(webhookSecret, []byte(body)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "Payload too large" {
		t.Errorf("message: got %v", msg)
	}
	if len(ts.insights.ingested) != 0 {
		t.Error("oversized webhook must not ingest")
	}
}

func TestCallWebhookForeignCall(t *testing.T) {
	ts := newTestServer(t)
	ts.insights.ingestErr = usecaseErrors.ErrForbidden
	body := `{"call_id":"c-1","organization_id":"11111111-1111-1111-1111-111111111111","transcription":"hi"}`

	rec := ts.do(http.MethodPost, "/api/webhooks/calls", "", body, ai.SignatureHeader, ai.Sign(webhookSecret, []byte(body)))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d", rec.Code)
	}
}
