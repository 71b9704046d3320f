package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// entityOps implements the shared CRUD and query surface every entity
// client exposes. Entity clients embed it and add their own
// relationship queries on top.
type entityOps[T any] struct {
	handler  *RequestHandler
	endpoint string
}

func decodeItem[T any](body []byte) (*T, error) {
	var envelope autotask.ItemResponse[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding item response: %w", err)
	}
	return &envelope.Item, nil
}

func decodeEntity[T any](body []byte) (*T, error) {
	var entity T
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, fmt.Errorf("decoding entity: %w", err)
	}
	return &entity, nil
}

func decodeList[T any](body []byte) (*autotask.ListResponse[T], error) {
	var list autotask.ListResponse[T]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return &list, nil
}

func (e *entityOps[T]) create(ctx context.Context, payload *T) (*T, error) {
	body, err := e.handler.ExecuteRequest(ctx, http.MethodPost, "/"+e.endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", e.endpoint, err)
	}
	return decodeItem[T](body)
}

func (e *entityOps[T]) get(ctx context.Context, id int64) (*T, error) {
	body, err := e.handler.GetByID(ctx, e.endpoint, id)
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", e.endpoint, id, err)
	}
	return decodeEntity[T](body)
}

func (e *entityOps[T]) update(ctx context.Context, id int64, payload *T) (*T, error) {
	body, err := e.handler.ExecuteRequest(ctx, http.MethodPut, fmt.Sprintf("/%s/%d", e.endpoint, id), payload)
	if err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", e.endpoint, id, err)
	}
	return decodeItem[T](body)
}

// patch sends a partial update. The id is carried in the payload as
// well, which the API requires alongside the changed fields.
func (e *entityOps[T]) patch(ctx context.Context, id int64, fields map[string]any) (*T, error) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["id"] = id

	body, err := e.handler.ExecuteRequest(ctx, http.MethodPatch, fmt.Sprintf("/%s/%d", e.endpoint, id), payload)
	if err != nil {
		return nil, fmt.Errorf("patching %s %d: %w", e.endpoint, id, err)
	}
	return decodeItem[T](body)
}

func (e *entityOps[T]) delete(ctx context.Context, id int64) error {
	_, err := e.handler.ExecuteRequest(ctx, http.MethodDelete, fmt.Sprintf("/%s/%d", e.endpoint, id), nil)
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", e.endpoint, id, err)
	}
	return nil
}

func (e *entityOps[T]) query(ctx context.Context, params *autotask.QueryParams) (*autotask.ListResponse[T], error) {
	body, err := e.handler.ExecuteQueryRequest(ctx, e.endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", e.endpoint, err)
	}
	return decodeList[T](body)
}

// queryAll drains every page of a query.
func (e *entityOps[T]) queryAll(ctx context.Context, params *autotask.QueryParams) ([]T, error) {
	return autotask.AllPages(ctx, func(ctx context.Context, page int) (*autotask.ListResponse[T], error) {
		paged := autotask.QueryParams{Page: page}
		if params != nil {
			paged.Filter = params.Filter
			paged.MaxRecords = params.MaxRecords
		}
		return e.query(ctx, &paged)
	})
}
