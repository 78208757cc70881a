// Package restdb reads the catalog from a Firestore database over its REST
// API, the backend the CampusFair web client writes to.
package restdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/httputil"
	"github.com/lukman83/campusfair/internal/models"
)

// DefaultBaseURL is the public Firestore REST endpoint.
const DefaultBaseURL = "https://firestore.googleapis.com"

const (
	productsCollection = "products"
	sellersCollection  = "sellers"
)

// Source implements catalog.Source against Firestore REST.
type Source struct {
	client     *http.Client
	baseURL    string
	project    string
	apiKey     string
	maxRetries int
}

var _ catalog.Source = (*Source)(nil)

// NewSource creates a Firestore source for project. An empty baseURL uses
// DefaultBaseURL.
func NewSource(client *http.Client, baseURL, project, apiKey string) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		project:    project,
		apiKey:     apiKey,
		maxRetries: 2,
	}
}

func (s *Source) Name() string { return "firestore" }

func (s *Source) FetchAllProducts(ctx context.Context) ([]models.Product, error) {
	docs, err := s.runQuery(ctx, newestFirst(productsCollection))
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "query products", err)
	}
	return products(docs), nil
}

func (s *Source) FetchSellersByIDs(ctx context.Context, ids []string) (map[string]models.Seller, error) {
	out := make(map[string]models.Seller, len(ids))
	for _, batch := range catalog.Batches(ids, catalog.SellerBatchSize) {
		refs := make([]value, len(batch))
		for i, id := range batch {
			refs[i] = refVal(s.docRoot() + "/" + sellersCollection + "/" + id)
		}
		q := structuredQuery{From: []collectionSelector{{CollectionID: sellersCollection}}}
		q = where(q, "__name__", "IN", value{ArrayValue: &arrayValue{Values: refs}})

		docs, err := s.runQuery(ctx, q)
		if err != nil {
			return nil, catalog.Fetchf(s.Name(), "query sellers", err)
		}
		for _, d := range docs {
			sel := d.seller()
			out[sel.ID] = sel
		}
	}
	return out, nil
}

func (s *Source) FindSellerBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	q := structuredQuery{From: []collectionSelector{{CollectionID: sellersCollection}}, Limit: 1}
	q = where(q, "storeSlug", "EQUAL", stringVal(slug))

	docs, err := s.runQuery(ctx, q)
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "query seller slug", err)
	}
	if len(docs) == 0 {
		return nil, catalog.ErrNotFound
	}
	sel := docs[0].seller()
	return &sel, nil
}

func (s *Source) FetchProductsBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	q := where(newestFirst(productsCollection), "sellerId", "EQUAL", stringVal(sellerID))
	docs, err := s.runQuery(ctx, q)
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "query store products", err)
	}
	return products(docs), nil
}

func (s *Source) docRoot() string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents", s.project)
}

func (s *Source) runQueryURL() string {
	u := fmt.Sprintf("%s/v1/%s:runQuery", s.baseURL, s.docRoot())
	if s.apiKey != "" {
		u += "?key=" + url.QueryEscape(s.apiKey)
	}
	return u
}

func (s *Source) runQuery(ctx context.Context, q structuredQuery) ([]document, error) {
	body, err := json.Marshal(runQueryRequest{StructuredQuery: q})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.runQueryURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range httputil.JSONHeaders() {
		req.Header[k] = v
	}

	resp, err := httputil.DoWithRetry(s.client, req, s.maxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httputil.NewStatusError(resp, respBody)
	}

	var parsed runQueryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal runQuery response: %w", err)
	}
	docs := make([]document, 0, len(parsed))
	for _, r := range parsed {
		if r.Document != nil {
			docs = append(docs, *r.Document)
		}
	}
	return docs, nil
}

func products(docs []document) []models.Product {
	out := make([]models.Product, len(docs))
	for i, d := range docs {
		out[i] = d.product()
	}
	return out
}
