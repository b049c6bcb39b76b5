package remote

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/maci0/resembl/internal/store"
)

func TestUpsertSnippetParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/snippets" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body wireSnippet
		json.NewDecoder(r.Body).Decode(&body)
		if body.Code != "mov eax, ebx" {
			t.Fatalf("body code = %q", body.Code)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"result": "aliased"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	var cs store.Checksum
	cs[0] = 1
	res, err := c.UpsertSnippet(context.Background(), cs, "mov eax, ebx", nil, "f1")
	if err != nil {
		t.Fatalf("UpsertSnippet: %v", err)
	}
	if res != store.Aliased {
		t.Fatalf("result = %v, want Aliased", res)
	}
}

func TestGetByChecksumNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	var cs store.Checksum
	if _, err := c.GetByChecksum(context.Background(), cs); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetByChecksumDecodesWireFormat(t *testing.T) {
	var cs store.Checksum
	cs[0] = 0xAB

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(wireSnippet{
			Checksum: hex.EncodeToString(cs[:]),
			Code:     "ret",
			Names:    []string{"f1"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	sn, err := c.GetByChecksum(context.Background(), cs)
	if err != nil {
		t.Fatalf("GetByChecksum: %v", err)
	}
	if sn.Checksum != cs || sn.Code != "ret" || len(sn.Names) != 1 {
		t.Fatalf("snippet = %+v", sn)
	}
}
