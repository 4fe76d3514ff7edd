// Package httpload implements catalog.Loader against the catalog HTTP API.
package httpload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/menulink/ordercore/internal/catalog"
	"github.com/shopspring/decimal"
)

// Loader fetches catalog snapshots from GET {baseURL}/businesses/{id}/catalog.
type Loader struct {
	baseURL string
	client  *http.Client
}

var _ catalog.Loader = (*Loader)(nil)

// New returns a Loader for the given API base URL. httpClient may be nil,
// in which case a client with a 10s timeout is used.
func New(baseURL string, httpClient *http.Client) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Loader{baseURL: baseURL, client: httpClient}
}

// catalogResponse mirrors the collaborator's payload shape.
type catalogResponse struct {
	Version    string        `json:"version"`
	Categories []categoryDTO `json:"categories"`
	Products   []productDTO  `json:"products"`
}

type categoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productDTO struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID string          `json:"categoryId"`
	Image      string          `json:"image,omitempty"`
	IsActive   bool            `json:"isActive"`
	InStock    bool            `json:"inStock"`
	Sizes      []sizeDTO       `json:"sizes,omitempty"`
	Extras     []extraDTO      `json:"extras,omitempty"`
}

type sizeDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

type extraDTO struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Load fetches and decodes the catalog for one business.
// A missing business maps to catalog.ErrNotFound; connection errors and
// 5xx responses map to catalog.ErrTransient so the caller knows a retry
// with the same arguments is legitimate.
func (l *Loader) Load(ctx context.Context, businessID string) (*catalog.Snapshot, error) {
	url := fmt.Sprintf("%s/businesses/%s/catalog", l.baseURL, businessID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpload: build request: %w", err)
	}

	res, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrTransient, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: business %s", catalog.ErrNotFound, businessID)
	case res.StatusCode >= 500:
		return nil, fmt.Errorf("%w: catalog API returned %d", catalog.ErrTransient, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("httpload: unexpected status %d for business %s", res.StatusCode, businessID)
	}

	var payload catalogResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", catalog.ErrTransient, err)
	}

	return mapToSnapshot(businessID, payload), nil
}

func mapToSnapshot(businessID string, payload catalogResponse) *catalog.Snapshot {
	version := payload.Version
	if version == "" {
		// The API predates versioned catalogs; fall back to the fetch time
		// so every reload still produces a distinguishable snapshot.
		version = time.Now().UTC().Format(time.RFC3339Nano)
	}

	categories := make([]catalog.Category, 0, len(payload.Categories))
	for _, c := range payload.Categories {
		categories = append(categories, catalog.Category{ID: c.ID, Name: c.Name})
	}

	items := make([]catalog.Item, 0, len(payload.Products))
	for _, p := range payload.Products {
		items = append(items, catalog.Item{
			ID:         p.ID,
			Name:       p.Name,
			BasePrice:  p.Price,
			CategoryID: p.CategoryID,
			ImageURL:   p.Image,
			IsActive:   p.IsActive,
			InStock:    p.InStock,
			Sizes:      mapSizes(p.Sizes),
			Extras:     mapExtras(p.Extras),
		})
	}

	return catalog.NewSnapshot(businessID, version, categories, items)
}

func mapSizes(in []sizeDTO) []catalog.Size {
	if len(in) == 0 {
		return nil
	}
	out := make([]catalog.Size, 0, len(in))
	for _, s := range in {
		out = append(out, catalog.Size{ID: s.ID, Name: s.Name, PriceModifier: s.PriceModifier})
	}
	return out
}

func mapExtras(in []extraDTO) []catalog.Extra {
	if len(in) == 0 {
		return nil
	}
	out := make([]catalog.Extra, 0, len(in))
	for _, e := range in {
		out = append(out, catalog.Extra{ID: e.ID, Name: e.Name, Price: e.Price})
	}
	return out
}
