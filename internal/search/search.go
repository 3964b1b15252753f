package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/bsavchuk/contacts-api/internal/models"
)

const DefaultIndex = "contacts"

func NewClient(url, username, password string) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("search: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: ping: %s", res.Status())
	}
	return es, nil
}

// Index mirrors contacts into Elasticsearch. A nil Index (or one
// without a client) disables the mirror and handlers fall back to the
// database search path.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func (i *Index) Enabled() bool {
	return i != nil && i.ES != nil
}

func (i *Index) Put(ctx context.Context, contact *models.Contact) error {
	if !i.Enabled() {
		return nil
	}
	body, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("search: marshal contact: %w", err)
	}
	res, err := i.ES.Index(i.Name, bytes.NewReader(body),
		i.ES.Index.WithDocumentID(fmt.Sprint(contact.ID)),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index contact %d: %w", contact.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index contact %d: %s", contact.ID, res.Status())
	}
	return nil
}

func (i *Index) Remove(ctx context.Context, contactID uint) error {
	if !i.Enabled() {
		return nil
	}
	res, err := i.ES.Delete(i.Name, fmt.Sprint(contactID),
		i.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete contact %d: %w", contactID, err)
	}
	defer res.Body.Close()
	// 404 here just means the contact was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete contact %d: %s", contactID, res.Status())
	}
	return nil
}

// Search runs the owner-scoped substring query: every supplied field
// becomes a case-insensitive wildcard clause, ANDed, with a hard term
// filter on the owner id.
func (i *Index) Search(ctx context.Context, ownerID uint, name, surname, email string) ([]models.Contact, error) {
	must := []map[string]any{}
	add := func(field, value string) {
		if value == "" {
			return
		}
		must = append(must, map[string]any{
			"wildcard": map[string]any{
				field: map[string]any{
					"value":            "*" + strings.ToLower(value) + "*",
					"case_insensitive": true,
				},
			},
		})
	}
	add("first_name", name)
	add("last_name", surname)
	add("email", email)

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"user_id": ownerID}},
				},
				"must": must,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: query: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Contact `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	contacts := make([]models.Contact, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		contacts[n] = hit.Source
	}
	return contacts, nil
}
