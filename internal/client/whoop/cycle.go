package whoop

import (
	"bytes"
	"context"
	"net/http"

	go_json "github.com/goccy/go-json"
)

type cycleService struct {
	client *Client
}

func (s *cycleService) List(ctx context.Context, params *ListParams) ([]Cycle, error) {
	const route = "/cycle"

	var cycles cycleList
	if err := s.client.do(ctx, http.MethodGet, route, params.values(), &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}

// cycleList accepts both a bare JSON array of cycles and a paginated
// {"records": [...]} envelope.
type cycleList []Cycle

func (l *cycleList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var cycles []Cycle
		if err := go_json.Unmarshal(trimmed, &cycles); err != nil {
			return err
		}
		*l = cycles
		return nil
	}

	var page PaginatedResponse[Cycle]
	if err := go_json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	*l = page.Records
	return nil
}
