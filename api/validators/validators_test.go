package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
)

type createPayload struct {
	Name  string `json:"name" validate:"required,max=120"`
	Tiers []int  `json:"tiers" validate:"min=2"`
}

func expectValidation(t *testing.T, err error) *pkgerrors.Error {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	return typed
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Counter Book","tiers":[1,2]}`))

	var dest createPayload
	if err := DecodeJSONBody(r, &dest); err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if dest.Name != "Counter Book" || len(dest.Tiers) != 2 {
		t.Fatalf("decoded = %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","tiers":[1,2],"bogus":true}`))

	var dest createPayload
	expectValidation(t, DecodeJSONBody(r, &dest))
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"tiers":[1]}`))

	var dest createPayload
	typed := expectValidation(t, DecodeJSONBody(r, &dest))

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details = %#v", typed.Details())
	}
	if details["name"] != "is required" {
		t.Errorf("name detail = %q", details["name"])
	}
	if details["tiers"] != "must be at least 2" {
		t.Errorf("tiers detail = %q", details["tiers"])
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=17&bad=abc&big=9000", nil)

	if got, err := ParseQueryInt(r, "limit", 25, 1, 100); err != nil || got != 17 {
		t.Fatalf("limit = %d, %v", got, err)
	}
	if got, err := ParseQueryInt(r, "missing", 25, 1, 100); err != nil || got != 25 {
		t.Fatalf("default = %d, %v", got, err)
	}
	if _, err := ParseQueryInt(r, "bad", 25, 1, 100); err == nil {
		t.Fatal("non-numeric must fail")
	}
	if _, err := ParseQueryInt(r, "big", 25, 1, 100); err == nil {
		t.Fatal("out of range must fail")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  padded  ", 0); got != "padded" {
		t.Errorf("trim = %q", got)
	}
	if got := SanitizeString("abcdef", 4); got != "abcd" {
		t.Errorf("cap = %q", got)
	}
	if got := SanitizeString("héllo wörld", 6); got != "héllo" {
		t.Errorf("rune cap = %q", got)
	}
}
