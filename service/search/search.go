// Package search runs full-text catalog queries against Elasticsearch. The
// index holds raw catalog records; hits come back normalized.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/elastic/go-elasticsearch/v8"

	"farmstore.GO/service/catalog"
)

// ErrNotConfigured is returned when no Elasticsearch client could be built.
var ErrNotConfigured = errors.New("search: elasticsearch not configured")

const DefaultIndex = "farmstore_catalog"

// Result is one page of normalized hits.
type Result struct {
	Products []catalog.NormalizedProduct `json:"products"`
	Total    int                         `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"pageSize"`
	Warnings []string                    `json:"warnings,omitempty"`
}

// TotalPages is at least 1.
func (r *Result) TotalPages() int {
	if r.PageSize <= 0 {
		return 1
	}
	n := (r.Total + r.PageSize - 1) / r.PageSize
	if n < 1 {
		return 1
	}
	return n
}

type Service struct {
	client     *elasticsearch.Client
	index      string
	normalizer *catalog.Normalizer
}

// NewServiceFromEnv reads ELASTICSEARCH_HOST and ELASTICSEARCH_INDEX.
func NewServiceFromEnv(n *catalog.Normalizer) *Service {
	host := os.Getenv("ELASTICSEARCH_HOST")
	if host == "" {
		host = "http://localhost:9200"
	}
	index := os.Getenv("ELASTICSEARCH_INDEX")
	if index == "" {
		index = DefaultIndex
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{host}})
	if err != nil {
		return &Service{index: index, normalizer: n}
	}
	return NewService(client, index, n)
}

func NewService(client *elasticsearch.Client, index string, n *catalog.Normalizer) *Service {
	if n == nil {
		n = catalog.NewNormalizer()
	}
	return &Service{client: client, index: index, normalizer: n}
}

// Search matches query against product, variant and size category names.
func (s *Service) Search(ctx context.Context, query string, page catalog.Page) (*Result, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}
	page = page.Normalize()

	body := map[string]interface{}{
		"from": page.Offset(),
		"size": page.Size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name^3", "variants.label", "sizeCategories.label"},
			},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string                 `json:"_id"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	raws := make([]map[string]interface{}, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		if hit.Source == nil {
			continue
		}
		if _, ok := hit.Source["id"]; !ok {
			hit.Source["id"] = hit.ID
		}
		raws = append(raws, hit.Source)
	}
	records, warnings := catalog.DecodeRecords(raws)
	return &Result{
		Products: s.normalizer.NormalizeAll(records),
		Total:    esResp.Hits.Total.Value,
		Page:     page.Number,
		PageSize: page.Size,
		Warnings: warnings,
	}, nil
}

// Index writes records into the index keyed by record id.
func (s *Service) Index(ctx context.Context, records []catalog.Record) (int, error) {
	if s.client == nil {
		return 0, ErrNotConfigured
	}
	n := 0
	for _, r := range records {
		doc, err := json.Marshal(r)
		if err != nil {
			return n, fmt.Errorf("encode %s: %w", r.RecordID(), err)
		}
		res, err := s.client.Index(s.index, bytes.NewReader(doc),
			s.client.Index.WithContext(ctx),
			s.client.Index.WithDocumentID(r.RecordID()),
		)
		if err != nil {
			return n, fmt.Errorf("index %s: %w", r.RecordID(), err)
		}
		res.Body.Close()
		if res.IsError() {
			return n, fmt.Errorf("index %s: elasticsearch error: %s", r.RecordID(), res.Status())
		}
		n++
	}
	return n, nil
}
