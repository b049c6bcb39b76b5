// Package remote is a store.Backend reached over HTTP, selected when
// DATABASE_URL is an http(s):// URL. The wire format is this backend's private
// concern, not specified by the core.
package remote

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/maci0/resembl/internal/store"
)

// Client is the HTTP-backed Backend.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New creates a Client against baseURL (e.g. "https://resembl.example.com").
// Transient network/5xx failures are retried by retryablehttp before
// surfacing as store.ErrTransientStorage.
func New(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Client{baseURL: baseURL, http: rc}
}

type wireSnippet struct {
	Checksum      string    `json:"checksum"`
	Code          string    `json:"code"`
	Names         []string  `json:"names"`
	Tags          []string  `json:"tags"`
	MinHash       []byte    `json:"minhash"`
	CollectionRef string    `json:"collection_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toWire(s store.Snippet) wireSnippet {
	return wireSnippet{
		Checksum:      hex.EncodeToString(s.Checksum[:]),
		Code:          s.Code,
		Names:         s.Names,
		Tags:          s.Tags,
		MinHash:       s.MinHash,
		CollectionRef: s.CollectionRef,
		CreatedAt:     s.CreatedAt,
	}
}

func fromWire(w wireSnippet) (store.Snippet, error) {
	raw, err := hex.DecodeString(w.Checksum)
	if err != nil || len(raw) != 32 {
		return store.Snippet{}, fmt.Errorf("%w: malformed checksum in response", store.ErrPermanentStorage)
	}
	var cs store.Checksum
	copy(cs[:], raw)
	return store.Snippet{
		Checksum:      cs,
		Code:          w.Code,
		Names:         w.Names,
		Tags:          w.Tags,
		MinHash:       w.MinHash,
		CollectionRef: w.CollectionRef,
		CreatedAt:     w.CreatedAt,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrPermanentStorage, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrPermanentStorage, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrTransientStorage, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusConflict:
		return store.ErrAlreadyExists
	case http.StatusUnprocessableEntity:
		return store.ErrEmptyAliasSet
	case http.StatusMultipleChoices:
		return store.ErrAmbiguous
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: server returned %d", store.ErrTransientStorage, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: server returned %d", store.ErrPermanentStorage, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", store.ErrPermanentStorage, err)
	}
	return nil
}

var _ store.Backend = (*Client)(nil)

func (c *Client) UpsertSnippet(ctx context.Context, checksum store.Checksum, code string, minhash []byte, initialName string) (store.UpsertResult, error) {
	var resp struct {
		Result string `json:"result"`
	}
	body := toWire(store.Snippet{Checksum: checksum, Code: code, MinHash: minhash, Names: []string{initialName}})
	if err := c.do(ctx, http.MethodPut, "/v1/snippets", body, &resp); err != nil {
		return 0, err
	}
	if resp.Result == "aliased" {
		return store.Aliased, nil
	}
	return store.Created, nil
}

func (c *Client) GetByChecksum(ctx context.Context, checksum store.Checksum) (store.Snippet, error) {
	var w wireSnippet
	if err := c.do(ctx, http.MethodGet, "/v1/snippets/"+hex.EncodeToString(checksum[:]), nil, &w); err != nil {
		return store.Snippet{}, err
	}
	return fromWire(w)
}

func (c *Client) GetByChecksumPrefix(ctx context.Context, prefix string) (store.Snippet, error) {
	var w wireSnippet
	if err := c.do(ctx, http.MethodGet, "/v1/snippets?prefix="+prefix, nil, &w); err != nil {
		return store.Snippet{}, err
	}
	return fromWire(w)
}

func (c *Client) GetByName(ctx context.Context, name string) (store.Snippet, error) {
	var w wireSnippet
	if err := c.do(ctx, http.MethodGet, "/v1/names/"+name, nil, &w); err != nil {
		return store.Snippet{}, err
	}
	return fromWire(w)
}

func (c *Client) AddName(ctx context.Context, checksum store.Checksum, name string) error {
	return c.do(ctx, http.MethodPost, "/v1/snippets/"+hex.EncodeToString(checksum[:])+"/names/"+name, nil, nil)
}

func (c *Client) RemoveName(ctx context.Context, checksum store.Checksum, name string) error {
	return c.do(ctx, http.MethodDelete, "/v1/snippets/"+hex.EncodeToString(checksum[:])+"/names/"+name, nil, nil)
}

func (c *Client) AddTag(ctx context.Context, checksum store.Checksum, tag string) error {
	return c.do(ctx, http.MethodPost, "/v1/snippets/"+hex.EncodeToString(checksum[:])+"/tags/"+tag, nil, nil)
}

func (c *Client) RemoveTag(ctx context.Context, checksum store.Checksum, tag string) error {
	return c.do(ctx, http.MethodDelete, "/v1/snippets/"+hex.EncodeToString(checksum[:])+"/tags/"+tag, nil, nil)
}

func (c *Client) UpdateMinHash(ctx context.Context, checksum store.Checksum, minhash []byte) error {
	return c.do(ctx, http.MethodPut, "/v1/snippets/"+hex.EncodeToString(checksum[:])+"/minhash", map[string]any{"minhash": minhash}, nil)
}

func (c *Client) CreateCollection(ctx context.Context, name, description string) error {
	return c.do(ctx, http.MethodPut, "/v1/collections/"+name, map[string]string{"description": description}, nil)
}

func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/v1/collections/"+name, nil, nil)
}

func (c *Client) GetCollection(ctx context.Context, name string) (store.Collection, error) {
	var out store.Collection
	if err := c.do(ctx, http.MethodGet, "/v1/collections/"+name, nil, &out); err != nil {
		return store.Collection{}, err
	}
	return out, nil
}

func (c *Client) ListCollections(ctx context.Context) ([]store.Collection, error) {
	var out []store.Collection
	if err := c.do(ctx, http.MethodGet, "/v1/collections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssignCollection(ctx context.Context, checksum store.Checksum, collectionName string) error {
	return c.do(ctx, http.MethodPut, "/v1/snippets/"+hex.EncodeToString(checksum[:])+"/collection", map[string]string{"name": collectionName}, nil)
}

func (c *Client) AppendVersion(ctx context.Context, v store.SnippetVersion) error {
	return c.do(ctx, http.MethodPost, "/v1/versions", map[string]any{
		"name":     v.Name,
		"checksum": hex.EncodeToString(v.Checksum[:]),
		"code":     v.Code,
		"minhash":  v.MinHash,
	}, nil)
}

func (c *Client) Delete(ctx context.Context, checksum store.Checksum) error {
	return c.do(ctx, http.MethodDelete, "/v1/snippets/"+hex.EncodeToString(checksum[:]), nil, nil)
}

func (c *Client) IterAll(ctx context.Context, fn func(store.Snippet) error) error {
	var wires []wireSnippet
	if err := c.do(ctx, http.MethodGet, "/v1/snippets?all=true", nil, &wires); err != nil {
		return err
	}
	for _, w := range wires {
		sn, err := fromWire(w)
		if err != nil {
			return err
		}
		if err := fn(sn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Merge(ctx context.Context, other store.Backend) error {
	return store.GenericMerge(ctx, c, other)
}

func (c *Client) Vacuum(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/vacuum", nil, nil)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/ping", nil, nil)
}

func (c *Client) Close() error { return nil }
