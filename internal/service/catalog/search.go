package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/danuart/invitation-shop/internal/models"
)

const TemplateIndex = "invitation_templates"

// Search runs a fuzzy multi-field query over the template index.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.InvitationTemplate, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search failed: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.InvitationTemplate `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	templates := make([]models.InvitationTemplate, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		templates[i] = hit.Source
	}
	return r.Hits.Total.Value, templates, nil
}

// IndexTemplate writes one template document, used by the seeder.
func IndexTemplate(ctx context.Context, es *elasticsearch.Client, index string, tpl *models.InvitationTemplate) error {
	doc, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("encode template doc: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(doc),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(fmt.Sprint(tpl.ID)),
	)
	if err != nil {
		return fmt.Errorf("index template %d: %w", tpl.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index template %d: %s", tpl.ID, res.Status())
	}
	return nil
}
