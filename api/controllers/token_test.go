package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/get2salam/price-matrix-demo/pkg/auth"
)

func TestDevTokenMintsParseableToken(t *testing.T) {
	cfg := testConfig()
	handler := DevToken(cfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/public/token", bytes.NewReader([]byte(`{"shop_name":"Main Street Auto"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data tokenResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatalf("expected a token in the response")
	}
	if envelope.Data.SubjectID == uuid.Nil {
		t.Fatalf("expected a generated subject id")
	}
	if !envelope.Data.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %s", envelope.Data.ExpiresAt)
	}

	claims, err := auth.ParseAccessToken(cfg.JWT, envelope.Data.Token)
	if err != nil {
		t.Fatalf("minted token failed to parse: %v", err)
	}
	if claims.SubjectID != envelope.Data.SubjectID {
		t.Fatalf("expected subject %s in claims, got %s", envelope.Data.SubjectID, claims.SubjectID)
	}
	if claims.ShopName != "Main Street Auto" {
		t.Fatalf("expected shop name in claims, got %q", claims.ShopName)
	}
}

func TestDevTokenHonorsProvidedSubject(t *testing.T) {
	cfg := testConfig()
	subjectID := uuid.New()
	handler := DevToken(cfg, nil)

	body := []byte(`{"subject_id":"` + subjectID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data tokenResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SubjectID != subjectID {
		t.Fatalf("expected subject %s got %s", subjectID, envelope.Data.SubjectID)
	}
}

func TestDevTokenRejectsMalformedSubject(t *testing.T) {
	handler := DevToken(testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/public/token", bytes.NewReader([]byte(`{"subject_id":"not-a-uuid"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
