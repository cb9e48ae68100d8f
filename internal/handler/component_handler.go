package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"auren-studio/internal/domain"
	"auren-studio/internal/middleware"
	"auren-studio/internal/service"
	"auren-studio/pkg/etag"
	"auren-studio/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ComponentHandler struct {
	service  *service.ComponentService
	validate *validator.Validate
}

func NewComponentHandler(service *service.ComponentService) *ComponentHandler {
	return &ComponentHandler{
		service:  service,
		validate: validator.New(),
	}
}

func setETag(w http.ResponseWriter, component *domain.Component) {
	w.Header().Set("ETag", etag.FromTime(component.UpdatedAt).String())
}

func (h *ComponentHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	var req domain.ComponentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	component, err := h.service.Create(projectID, middleware.GetUserID(r), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		response.InternalError(w, "Failed to create component")
		return
	}

	setETag(w, component)
	response.Created(w, component)
}

func (h *ComponentHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	components, err := h.service.List(projectID)
	if err != nil {
		response.InternalError(w, "Failed to list components")
		return
	}

	if components == nil {
		components = []*domain.Component{}
	}
	response.Success(w, components)
}

func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	component, err := h.service.Get(vars["projectId"], vars["componentId"])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Component not found")
			return
		}
		response.InternalError(w, "Failed to fetch component")
		return
	}

	setETag(w, component)
	response.Success(w, component)
}

// Update applies a conditional replace. The If-Match header, when present,
// must equal the token of the stored revision or the request fails with 409;
// when absent the write is unconditional.
func (h *ComponentHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req domain.ComponentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ifMatch := etag.FromHeader(r.Header.Get("If-Match"))

	component, err := h.service.Update(vars["projectId"], vars["componentId"], &req, ifMatch)
	if err != nil {
		var conflictErr *service.ConflictError
		if errors.As(err, &conflictErr) {
			response.Conflict(w, "Conflict: Component was modified by another user")
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Component not found")
			return
		}
		response.InternalError(w, "Failed to update component")
		return
	}

	setETag(w, component)
	response.Success(w, component)
}

func (h *ComponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.Delete(vars["projectId"], vars["componentId"]); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Component not found")
			return
		}
		response.InternalError(w, "Failed to delete component")
		return
	}

	response.Success(w, map[string]string{"message": "Component deleted successfully"})
}
