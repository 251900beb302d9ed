package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/library"
	"github.com/bobinette/paperlog/services"
	"github.com/bobinette/paperlog/view"
)

// Variables and functions for specific errors
var (
	errInvalidRequest = errors.New("invalid request", errors.BadRequest())
)

type PaperEndpoint struct {
	service    *services.PaperService
	controller *library.Controller
	now        func() time.Time
}

func NewPaperEndpoint(service *services.PaperService, controller *library.Controller) *PaperEndpoint {
	return &PaperEndpoint{
		service:    service,
		controller: controller,
		now:        time.Now,
	}
}

type ListPapersRequest struct {
	Status   string
	Category string
	Q        string
	Sort     string
}

// Filter validates the request and turns it into a view filter. The full
// text query is resolved with the service.
func (ep *PaperEndpoint) Filter(ctx context.Context, req ListPapersRequest) (view.Filter, error) {
	f := view.Filter{Category: req.Category}

	if req.Status != "" {
		status, err := view.ParseStatusFilter(req.Status)
		if err != nil {
			return f, err
		}
		f.Status = status
	}

	sort, err := view.ParseSort(req.Sort)
	if err != nil {
		return f, err
	}
	f.Sort = sort

	ids, err := ep.service.Search(ctx, req.Q)
	if err != nil {
		return f, err
	}
	if ids != nil {
		f.IDs = ids
	}

	return f, nil
}

func (ep *PaperEndpoint) List(ctx context.Context, r interface{}) (interface{}, error) {
	req, ok := r.(ListPapersRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	f, err := ep.Filter(ctx, req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": ep.controller.View(f),
	}, nil
}

func (ep *PaperEndpoint) Get(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	paper, err := ep.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": paper,
	}, nil
}

func (ep *PaperEndpoint) Create(ctx context.Context, r interface{}) (interface{}, error) {
	paper, ok := r.(paperlog.Paper)
	if !ok {
		return nil, errInvalidRequest
	}

	paper, err := ep.service.Create(ctx, paper)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": paper,
	}, nil
}

type EditPaperRequest struct {
	ID   string
	Edit paperlog.Edit
}

func (ep *PaperEndpoint) Edit(ctx context.Context, r interface{}) (interface{}, error) {
	req, ok := r.(EditPaperRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	paper, err := ep.service.Edit(ctx, req.ID, req.Edit)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": paper,
	}, nil
}

type SaveNoteRequest struct {
	ID   string
	Note string
}

func (ep *PaperEndpoint) SaveNote(ctx context.Context, r interface{}) (interface{}, error) {
	req, ok := r.(SaveNoteRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	paper, err := ep.service.SaveNote(ctx, req.ID, req.Note)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": paper,
	}, nil
}

type AdvanceStatusRequest struct {
	ID      string
	Confirm bool
}

func (ep *PaperEndpoint) AdvanceStatus(ctx context.Context, r interface{}) (interface{}, error) {
	req, ok := r.(AdvanceStatusRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	status, err := ep.service.AdvanceStatus(ctx, req.ID, req.Confirm)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"id":     req.ID,
			"status": status,
		},
	}, nil
}

func (ep *PaperEndpoint) Delete(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	err := ep.service.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	return statusCoder{code: http.StatusNoContent}, nil
}

func (ep *PaperEndpoint) Stats(ctx context.Context, r interface{}) (interface{}, error) {
	return map[string]interface{}{
		"data": ep.controller.Overview(ep.now()),
	}, nil
}

func (ep *PaperEndpoint) Lookup(ctx context.Context, r interface{}) (interface{}, error) {
	q, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	// A failed lookup is not an error: data is null.
	return map[string]interface{}{
		"data": ep.service.Lookup(ctx, q),
	}, nil
}

func (ep *PaperEndpoint) Reindex(ctx context.Context, r interface{}) (interface{}, error) {
	n, err := ep.service.Reindex(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"indexed": n,
		},
	}, nil
}

// statusCoder is useful to return http responses with a status that is not 200 but is not
// an error either.
type statusCoder struct {
	code int
}

func (s statusCoder) StatusCode() int { return s.code }
