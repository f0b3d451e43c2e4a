package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	type patch struct {
		FolderID OptionalString `json:"folderId"`
	}

	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"folderId": null}`, wantPresent: true},
		{name: "empty", body: `{"folderId": ""}`, wantPresent: true, wantValue: ptr("")},
		{name: "value", body: `{"folderId": "folder_1"}`, wantPresent: true, wantValue: ptr("folder_1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p patch
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatal(err)
			}
			if p.FolderID.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", p.FolderID.Present, tt.wantPresent)
			}
			switch {
			case tt.wantValue == nil && p.FolderID.Value != nil:
				t.Errorf("Value = %q, want nil", *p.FolderID.Value)
			case tt.wantValue != nil && (p.FolderID.Value == nil || *p.FolderID.Value != *tt.wantValue):
				t.Errorf("Value = %v, want %q", p.FolderID.Value, *tt.wantValue)
			}
		})
	}
}

func TestOptional_Constructors(t *testing.T) {
	set := Set(42)
	if !set.Present || set.Value == nil || *set.Value != 42 {
		t.Errorf("Set(42) = %+v", set)
	}
	null := Null[string]()
	if !null.Present || null.Value != nil {
		t.Errorf("Null() = %+v", null)
	}

	b, err := json.Marshal(struct {
		A Optional[int]  `json:"a"`
		B OptionalString `json:"b"`
	}{A: set, B: null})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":42,"b":null}` {
		t.Errorf("Marshal = %s", b)
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "a folder named \"Docs\" already exists", map[string]interface{}{
		"resourceId": "folder_1",
	})

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["resourceId"] != "folder_1" || body["status"] != float64(http.StatusConflict) {
		t.Errorf("body = %v", body)
	}
	if !strings.HasSuffix(body["type"].(string), "section-6.5.8") {
		t.Errorf("type = %v", body["type"])
	}
}

func TestQueryOptional(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/files?folderId=folder_1&type=", nil)

	if got := QueryOptional(r, "folderId"); got == nil || *got != "folder_1" {
		t.Errorf("folderId = %v", got)
	}
	if got := QueryOptional(r, "type"); got != nil {
		t.Errorf("empty type = %q, want nil", *got)
	}
	if got := QueryOptional(r, "missing"); got != nil {
		t.Errorf("missing = %q, want nil", *got)
	}
}

func ptr(s string) *string { return &s }

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantAny bool
	}{
		{name: "valid", body: `{"name":"Docs"}`},
		{name: "unknown fields ignored", body: `{"name":"Docs","extra":1}`},
		{name: "empty", body: ``, wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"name":`, wantAny: true},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, wantAny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest struct {
				Name string `json:"name"`
			}
			r := httptest.NewRequest(http.MethodPost, "/api/folders", strings.NewReader(tt.body))
			err := ParseJSON(httptest.NewRecorder(), r, &dest)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAny:
				if err == nil {
					t.Error("expected error")
				}
			default:
				if err != nil || dest.Name != "Docs" {
					t.Errorf("err = %v, name = %q", err, dest.Name)
				}
			}
		})
	}
}
