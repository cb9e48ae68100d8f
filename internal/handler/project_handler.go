package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"auren-studio/internal/domain"
	"auren-studio/internal/middleware"
	"auren-studio/internal/service"
	"auren-studio/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service  *service.ProjectService
	validate *validator.Validate
}

func NewProjectHandler(service *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	project, err := h.service.Create(middleware.GetUserID(r), &req)
	if err != nil {
		response.InternalError(w, "Failed to create project")
		return
	}

	response.Created(w, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List()
	if err != nil {
		response.InternalError(w, "Failed to list projects")
		return
	}

	if projects == nil {
		projects = []*domain.Project{}
	}
	response.Success(w, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		response.InternalError(w, "Failed to fetch project")
		return
	}

	response.Success(w, project)
}
