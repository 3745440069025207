package taxonomy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/service"
)

// Client talks to a running taxonomy server over its JSON API.
type Client interface {
	io.Closer
	CreateEntry(ctx context.Context, request *service.CreateEntryRequest) (*model.TaxonEntry, error)
	GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error)
	UpdateEntry(ctx context.Context, id uint, request *service.UpdateEntryRequest) (*model.TaxonEntry, error)
	DeleteEntry(ctx context.Context, id uint) error
	ListEntryVersions(ctx context.Context, id uint) ([]*service.EntryVersion, error)
	GetEntryVersion(ctx context.Context, id uint, version string) (*model.TaxonEntry, error)
	RestoreEntryVersion(ctx context.Context, id uint, version, baseVersion int64, changedBy string) (*model.TaxonEntry, error)
	SearchEntries(ctx context.Context, request *service.SearchRequest) (*service.SearchResultPage, error)
	CreateTaxon(ctx context.Context, request *service.CreateTaxonRequest) (*model.Taxon, error)
	GetTaxon(ctx context.Context, id uint) (*model.Taxon, error)
	ListTaxa(ctx context.Context) ([]*model.Taxon, error)
}

type client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server listening on the given port.
func NewClient(port string) (Client, error) {
	return &client{
		baseURL: "http://localhost:" + port,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *client) CreateEntry(ctx context.Context, request *service.CreateEntryRequest) (*model.TaxonEntry, error) {
	var entry model.TaxonEntry
	if err := c.do(ctx, http.MethodPost, "/v1/entries", request, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *client) GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error) {
	var entry model.TaxonEntry
	if err := c.do(ctx, http.MethodGet, entryPath(id), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *client) UpdateEntry(ctx context.Context, id uint, request *service.UpdateEntryRequest) (*model.TaxonEntry, error) {
	var entry model.TaxonEntry
	if err := c.do(ctx, http.MethodPut, entryPath(id), request, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *client) DeleteEntry(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, entryPath(id), nil, nil)
}

func (c *client) ListEntryVersions(ctx context.Context, id uint) ([]*service.EntryVersion, error) {
	var res struct {
		Versions []*service.EntryVersion `json:"versions"`
	}
	if err := c.do(ctx, http.MethodGet, entryPath(id)+"/versions", nil, &res); err != nil {
		return nil, err
	}
	return res.Versions, nil
}

func (c *client) GetEntryVersion(ctx context.Context, id uint, version string) (*model.TaxonEntry, error) {
	var entry model.TaxonEntry
	if err := c.do(ctx, http.MethodGet, entryPath(id)+"/versions/"+version, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *client) RestoreEntryVersion(ctx context.Context, id uint, version, baseVersion int64, changedBy string) (*model.TaxonEntry, error) {
	body := map[string]interface{}{
		"version":     version,
		"baseVersion": baseVersion,
		"changedBy":   changedBy,
	}

	var entry model.TaxonEntry
	if err := c.do(ctx, http.MethodPost, entryPath(id)+"/restore", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *client) SearchEntries(ctx context.Context, request *service.SearchRequest) (*service.SearchResultPage, error) {
	params := url.Values{}
	params.Set("q", request.Query)
	if request.Page > 0 {
		params.Set("page", strconv.Itoa(request.Page))
	}
	if request.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(request.PageSize))
	}
	if request.TaxonID > 0 {
		params.Set("taxon_id", strconv.FormatUint(uint64(request.TaxonID), 10))
	}

	var page service.SearchResultPage
	if err := c.do(ctx, http.MethodGet, "/v1/entries?"+params.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *client) CreateTaxon(ctx context.Context, request *service.CreateTaxonRequest) (*model.Taxon, error) {
	var taxon model.Taxon
	if err := c.do(ctx, http.MethodPost, "/v1/taxa", request, &taxon); err != nil {
		return nil, err
	}
	return &taxon, nil
}

func (c *client) GetTaxon(ctx context.Context, id uint) (*model.Taxon, error) {
	var taxon model.Taxon
	if err := c.do(ctx, http.MethodGet, "/v1/taxa/"+strconv.FormatUint(uint64(id), 10), nil, &taxon); err != nil {
		return nil, err
	}
	return &taxon, nil
}

func (c *client) ListTaxa(ctx context.Context) ([]*model.Taxon, error) {
	var res struct {
		Taxa []*model.Taxon `json:"taxa"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/taxa", nil, &res); err != nil {
		return nil, err
	}
	return res.Taxa, nil
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		apiErr := &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		_ = json.NewDecoder(res.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func entryPath(id uint) string {
	return "/v1/entries/" + strconv.FormatUint(uint64(id), 10)
}
