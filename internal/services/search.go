package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"storefront_back_end/internal/models"
)

const searchResultSize = 50

// SearchService interroge l'index produits d'Elasticsearch.
type SearchService struct {
	client *elasticsearch.Client
	index  string
}

// NewSearchService : client nil = recherche désactivée.
func NewSearchService(client *elasticsearch.Client, index string) *SearchService {
	return &SearchService{client: client, index: index}
}

func (s *SearchService) Enabled() bool { return s != nil && s.client != nil }

// Search cherche query dans le nom, la description et la marque.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.Product, error) {
	if !s.Enabled() {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	var buf bytes.Buffer
	body := map[string]interface{}{
		"size": searchResultSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "brand^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		products = append(products, hit.Source)
	}
	return products, nil
}

// IndexProducts envoie les produits en une requête _bulk. Retourne le
// nombre de documents refusés par Elasticsearch.
func (s *SearchService) IndexProducts(ctx context.Context, products []models.Product) (int, error) {
	if !s.Enabled() {
		return 0, ErrSearchDisabled
	}
	if len(products) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": s.index, "_id": p.ID},
		}
		if err := enc.Encode(meta); err != nil {
			return 0, fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(p); err != nil {
			return 0, fmt.Errorf("encode product %s: %w", p.ID, err)
		}
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("bulk: %s", res.Status())
	}

	var r struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode bulk: %w", err)
	}

	failed := 0
	if r.Errors {
		for _, item := range r.Items {
			for _, op := range item {
				if op.Status >= 300 {
					failed++
				}
			}
		}
	}
	return failed, nil
}
