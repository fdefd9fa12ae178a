package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"teto/domain/entities"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Snowflake is a Discord ID accepted as either a JSON string or number
type Snowflake int64

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		data = []byte(raw)
	}

	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid snowflake %s", string(data))
	}
	*s = Snowflake(id)
	return nil
}

// decodeJSON reads a size-limited JSON body into dst
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return entities.NewInvalidPayload("failed to read body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return entities.NewInvalidPayload("empty body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return entities.NewInvalidPayload("malformed JSON: %v", err)
	}
	return nil
}

// pathID parses a positive int64 route variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, entities.NewInvalidPayload("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryID parses a positive int64 query parameter
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, entities.NewInvalidPayload("missing %s", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, entities.NewInvalidPayload("invalid %s %q", name, raw)
	}
	return id, nil
}
