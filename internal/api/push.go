package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Push replays a queued mutation in its stored wire shape. Create posts
// the payload as-is; update and delete address the entity by the id field
// inside the payload.
func (c *Client) Push(ctx context.Context, entity, op string, payload json.RawMessage) error {
	base := "/" + entity

	switch op {
	case "create":
		return c.do(ctx, http.MethodPost, base, payload, nil)
	case "update", "delete":
		var ref struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(payload, &ref); err != nil {
			return fmt.Errorf("read id from %s payload: %w", entity, err)
		}
		if ref.ID <= 0 {
			return fmt.Errorf("%s %s payload has no id", entity, op)
		}
		if op == "delete" {
			return c.do(ctx, http.MethodDelete, idPath(base, ref.ID), nil, nil)
		}
		return c.do(ctx, http.MethodPut, idPath(base, ref.ID), payload, nil)
	default:
		return fmt.Errorf("unknown outbox op: %s", op)
	}
}
