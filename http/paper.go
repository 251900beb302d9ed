package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/endpoints"
	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/jwt"
)

// RegisterPaperEndpoints registers the json api. The endpoints that write
// require a token signed with jwtKey, unless jwtKey is empty.
func RegisterPaperEndpoints(srv Server, ep *endpoints.PaperEndpoint, jwtKey []byte) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
		kithttp.ServerBefore(kitjwt.HTTPToContext()),
	}

	authenticated := func(e endpoint.Endpoint) endpoint.Endpoint { return e }
	if len(jwtKey) > 0 {
		authenticated = jwt.Middleware(jwtKey)
	}

	// List papers handler
	listPapersHandler := kithttp.NewServer(
		ep.List,
		decodeListPapersRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Get paper handler
	getPaperHandler := kithttp.NewServer(
		ep.Get,
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Create paper handler
	createPaperHandler := kithttp.NewServer(
		authenticated(ep.Create),
		decodeCreatePaperRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Edit paper handler
	editPaperHandler := kithttp.NewServer(
		authenticated(ep.Edit),
		decodeEditPaperRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Save note handler
	saveNoteHandler := kithttp.NewServer(
		authenticated(ep.SaveNote),
		decodeSaveNoteRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Advance status handler
	advanceStatusHandler := kithttp.NewServer(
		authenticated(ep.AdvanceStatus),
		decodeAdvanceStatusRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Delete paper handler
	deletePaperHandler := kithttp.NewServer(
		authenticated(ep.Delete),
		decodeIDRequest, // Decoder is the same as get
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Statistics handler
	statsHandler := kithttp.NewServer(
		ep.Stats,
		kithttp.NopRequestDecoder,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Lookup handler
	lookupHandler := kithttp.NewServer(
		ep.Lookup,
		decodeLookupRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Reindex handler
	reindexHandler := kithttp.NewServer(
		authenticated(ep.Reindex),
		kithttp.NopRequestDecoder,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Register all handlers
	srv.RegisterHandler("/api/papers", "GET", listPapersHandler)
	srv.RegisterHandler("/api/papers", "POST", createPaperHandler)
	srv.RegisterHandler("/api/papers/:id", "GET", getPaperHandler)
	srv.RegisterHandler("/api/papers/:id", "PUT", editPaperHandler)
	srv.RegisterHandler("/api/papers/:id", "DELETE", deletePaperHandler)
	srv.RegisterHandler("/api/papers/:id/note", "PUT", saveNoteHandler)
	srv.RegisterHandler("/api/papers/:id/status", "POST", advanceStatusHandler)
	srv.RegisterHandler("/api/stats", "GET", statsHandler)
	srv.RegisterHandler("/api/lookup", "GET", lookupHandler)
	srv.RegisterHandler("/api/index", "POST", reindexHandler)
}

func decodeListPapersRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	return listPapersRequest(r), nil
}

func listPapersRequest(r *http.Request) endpoints.ListPapersRequest {
	query := r.URL.Query()
	return endpoints.ListPapersRequest{
		Status:   query.Get("status"),
		Category: query.Get("category"),
		Q:        query.Get("q"),
		Sort:     query.Get("sort"),
	}
}

func decodeIDRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	return param(ctx, "id"), nil
}

func decodeCreatePaperRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	var paper paperlog.Paper
	err := json.NewDecoder(r.Body).Decode(&paper)
	if err != nil {
		return nil, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err))
	}

	req := paper
	return req, nil
}

// readOnlyFields are the fields that only change through the status
// transition.
var readOnlyFields = []string{"status", "read", "readAt"}

func decodeEditPaperRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.New("could not read body", errors.BadRequest(), errors.WithCause(err))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err))
	}

	for _, field := range readOnlyFields {
		if _, ok := raw[field]; ok {
			return nil, errors.New(field+" cannot be edited, use the status transition", errors.BadRequest())
		}
	}

	if id, ok := raw["id"]; ok {
		var bodyID string
		if err := json.Unmarshal(id, &bodyID); err != nil || bodyID != param(ctx, "id") {
			return nil, errors.New("ids do not match between url and body", errors.BadRequest())
		}
	}

	var edit paperlog.Edit
	if err := json.Unmarshal(data, &edit); err != nil {
		return nil, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err))
	}

	req := endpoints.EditPaperRequest{
		ID:   param(ctx, "id"),
		Edit: edit,
	}
	return req, nil
}

func decodeSaveNoteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	var body struct {
		Note *string `json:"note"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		return nil, errors.New("invalid body", errors.BadRequest(), errors.WithCause(err))
	}
	if body.Note == nil {
		return nil, errors.New("missing note", errors.BadRequest())
	}

	req := endpoints.SaveNoteRequest{
		ID:   param(ctx, "id"),
		Note: *body.Note,
	}
	return req, nil
}

func decodeAdvanceStatusRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	req := endpoints.AdvanceStatusRequest{ID: param(ctx, "id")}

	confirm := r.URL.Query().Get("confirm")
	if confirm != "" {
		var err error
		req.Confirm, err = strconv.ParseBool(confirm)
		if err != nil {
			return nil, errors.New("invalid parameter: confirm", errors.BadRequest(), errors.WithCause(err))
		}
	}

	return req, nil
}

func decodeLookupRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	q := r.URL.Query().Get("q")
	if q == "" {
		return nil, errors.New("missing parameter: q", errors.BadRequest())
	}

	return q, nil
}
