package webhook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	go_json "github.com/goccy/go-json"
)

// Payload is the part of a WHOOP webhook the receiver acts on.
type Payload struct {
	UserID    string
	EventType string
	ID        string
	TraceID   string
}

// flexID accepts a JSON number or string. Null, empty and zero values leave it
// unset. Numbers are stored in plain decimal form.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := go_json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("id %s is neither a string nor a number", data)
	}
	if n == 0 {
		return nil
	}
	*f = flexID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

type rawPayload struct {
	UserID      flexID             `json:"user_id"`
	UserIDCamel flexID             `json:"userId"`
	Data        go_json.RawMessage `json:"data"`
	EventType   string             `json:"event_type"`
	Type        string             `json:"type"`
	ID          flexID             `json:"id"`
	TraceID     string             `json:"trace_id"`
}

type rawData struct {
	UserID flexID `json:"user_id"`
}

// ParsePayload extracts the user id and event type from a webhook body.
// The user id is the first of user_id, userId and data.user_id that is set.
// Returns ErrMalformedPayload if the body is not a JSON object.
// Returns ErrMissingUserID if no user id is present.
func ParsePayload(body []byte) (Payload, error) {
	var raw rawPayload
	if err := go_json.Unmarshal(body, &raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	p := Payload{
		EventType: firstNonEmpty(raw.EventType, raw.Type),
		ID:        string(raw.ID),
		TraceID:   raw.TraceID,
	}

	p.UserID = firstNonEmpty(string(raw.UserID), string(raw.UserIDCamel))
	if p.UserID == "" && len(raw.Data) > 0 {
		// data is optional and may be any shape
		var data rawData
		if err := go_json.Unmarshal(raw.Data, &data); err == nil {
			p.UserID = string(data.UserID)
		}
	}

	if p.UserID == "" {
		return p, ErrMissingUserID
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
