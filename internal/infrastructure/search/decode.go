package search

import (
	"encoding/json"
	"io"
	"time"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
)

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Source todoDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(r io.Reader) ([]entity.Todo, error) {
	var parsed searchResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.Todo, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		t := entity.Todo{ID: h.Source.ID, Todo: h.Source.Todo, Username: h.Source.Username}
		if t.ID == "" {
			t.ID = h.ID
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, h.Source.CreatedAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, h.Source.UpdatedAt)
		out = append(out, t)
	}
	return out, nil
}
