// Package api exposes the object store through an API Gateway proxy handler.
//
// Routes:
//
//	GET    /{type}                          all records
//	GET    /{type}?property=p&value=v       records where p == v
//	GET    /{type}/{id}                     one record
//	POST   /{type}                          save, minting an id if absent
//	PUT    /{type}/{id}                     save at id
//	DELETE /{type}/{id}                     delete
//
// The value query parameter is decoded as a JSON literal when it parses as
// one (1, true, "1"), otherwise it is matched as a plain string.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/slotstore/store"
)

// Handler serves object store requests.
type Handler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHandler initializes the store and registers the given types.
func NewHandler(ctx context.Context, s *store.Store, types []string, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := s.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	for _, typ := range types {
		if err := s.InitObjectStore(ctx, typ); err != nil {
			return nil, fmt.Errorf("init object store %s: %w", typ, err)
		}
	}
	return &Handler{store: s, logger: logger}, nil
}

// errorBody is returned for failures that are not engine errors.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// deleteBody is returned by DELETE.
type deleteBody struct {
	ID string `json:"id"`
}

// badRequest marks input errors.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// Handle routes a request to the store.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	typ, id, err := splitPath(req.Path)
	if err != nil {
		return h.respondError(req, err), nil
	}

	var result any
	status := http.StatusOK

	switch {
	case req.HTTPMethod == http.MethodGet && id == "":
		result, err = h.list(ctx, typ, req.QueryStringParameters)
	case req.HTTPMethod == http.MethodGet:
		result, err = h.store.FindByID(ctx, typ, id)
	case req.HTTPMethod == http.MethodPost && id == "":
		result, err = h.save(ctx, typ, "", req.Body)
		status = http.StatusCreated
	case req.HTTPMethod == http.MethodPut && id != "":
		result, err = h.save(ctx, typ, id, req.Body)
	case req.HTTPMethod == http.MethodDelete && id != "":
		var deleted string
		deleted, err = h.store.Delete(ctx, typ, id)
		result = deleteBody{ID: deleted}
	default:
		return respond(http.StatusMethodNotAllowed, errorBody{
			Code:    "METHOD_NOT_ALLOWED",
			Message: fmt.Sprintf("%s not allowed on %s", req.HTTPMethod, req.Path),
		}), nil
	}

	if err != nil {
		return h.respondError(req, err), nil
	}
	return respond(status, result), nil
}

func (h *Handler) list(ctx context.Context, typ string, query map[string]string) ([]store.Record, error) {
	property, hasProperty := query["property"]
	if !hasProperty {
		return h.store.FindAll(ctx, typ)
	}
	if property == "" {
		return nil, badRequest{"property must not be empty"}
	}
	raw, ok := query["value"]
	if !ok {
		return nil, badRequest{"value is required with property"}
	}
	return h.store.FindByProperty(ctx, typ, property, ParseValue(raw))
}

func (h *Handler) save(ctx context.Context, typ, id, body string) (store.Record, error) {
	var rec store.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, badRequest{fmt.Sprintf("invalid record body: %v", err)}
	}
	if rec == nil {
		return nil, badRequest{"record body must be a JSON object"}
	}
	if id != "" {
		rec[store.IDField] = id
	}
	return h.store.Save(ctx, typ, rec)
}

// ParseValue decodes a query value as a JSON scalar, falling back to the raw string.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case string, float64, bool, nil:
			return v
		}
	}
	return raw
}

// splitPath extracts the type and optional id from /{type}[/{id}].
func splitPath(path string) (typ, id string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 2 {
		return "", "", badRequest{fmt.Sprintf("invalid path %q", path)}
	}
	if typ, err = url.PathUnescape(parts[0]); err != nil {
		return "", "", badRequest{fmt.Sprintf("invalid type in path %q", path)}
	}
	if len(parts) == 2 {
		if id, err = url.PathUnescape(parts[1]); err != nil || id == "" {
			return "", "", badRequest{fmt.Sprintf("invalid id in path %q", path)}
		}
	}
	return typ, id, nil
}

// StatusCode maps an error to an HTTP status.
func StatusCode(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br), errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrStoreNotInitialized):
		return http.StatusNotFound
	case errors.Is(err, store.ErrStorageUnavailable), errors.Is(err, store.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(req events.APIGatewayProxyRequest, err error) events.APIGatewayProxyResponse {
	status := StatusCode(err)

	var body any
	var se *store.Error
	switch {
	case errors.As(err, &se):
		body = se
	case status == http.StatusBadRequest:
		body = errorBody{Code: "BAD_REQUEST", Message: err.Error()}
	default:
		body = errorBody{Code: "INTERNAL", Message: "internal error"}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", req.HTTPMethod,
			"path", req.Path,
			"error", err,
		)
	}
	return respond(status, body)
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"code":"INTERNAL","message":"internal error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}
