package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// TodoIndex keeps todos in an Elasticsearch index for full-text search.
type TodoIndex struct {
	ES   *elasticsearch.Client
	Name string
}

func NewTodoIndex(es *elasticsearch.Client, index string) *TodoIndex {
	return &TodoIndex{ES: es, Name: index}
}

// todoMapping keeps username exact-match only so the owner filter never
// matches across users.
const todoMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "todo":       {"type": "text"},
      "username":   {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with the todo mapping unless it already exists.
func (x *TodoIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{x.Name}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: x.Name, Body: strings.NewReader(todoMapping)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// lost a race with another instance
	if res.StatusCode == 400 && strings.Contains(readAll(res.Body), "resource_already_exists_exception") {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

type todoDoc struct {
	ID        string `json:"id"`
	Todo      string `json:"todo"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (x *TodoIndex) Index(ctx context.Context, t *entity.Todo) error {
	b, err := json.Marshal(todoDoc{
		ID:        t.ID,
		Todo:      t.Todo,
		Username:  t.Username,
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Name, DocumentID: t.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *TodoIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// already gone is fine
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search matches q against the todo text, restricted to username's documents.
func (x *TodoIndex) Search(ctx context.Context, username, q string, size int) ([]entity.Todo, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{"todo": q},
				},
				"filter": map[string]any{
					"term": map[string]any{"username.keyword": username},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Name),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	return decodeHits(res.Body)
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(b)
}
