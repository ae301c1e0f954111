package postgres

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/iho/tokenledger/internal/domain"
)

// lastEvaluatedKey is the serialized form of the pagination continuation
// point. Clients receive it base64-encoded and must treat it as opaque; the
// shape is not part of the API contract.
type lastEvaluatedKey struct {
	SortKey string `json:"sort_key"`
}

func encodeCursor(sortKey string) string {
	raw, _ := json.Marshal(lastEvaluatedKey{SortKey: sortKey})
	return base64.URLEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	var key lastEvaluatedKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	if key.SortKey == "" {
		return "", domain.ErrInvalidCursor
	}

	return key.SortKey, nil
}
