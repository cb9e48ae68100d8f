package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"auren-studio/internal/domain"
	"auren-studio/internal/service"
	"auren-studio/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type RecordHandler struct {
	service  *service.RecordService
	validate *validator.Validate
}

func NewRecordHandler(service *service.RecordService) *RecordHandler {
	return &RecordHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	record, err := h.service.Create(&req)
	if err != nil {
		response.InternalError(w, "Failed to create record")
		return
	}

	response.Created(w, record)
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.URL.Query().Get("componentId"))
	if err != nil {
		response.InternalError(w, "Failed to list records")
		return
	}

	if records == nil {
		records = []*domain.Record{}
	}
	response.Success(w, records)
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Record not found")
			return
		}
		response.InternalError(w, "Failed to fetch record")
		return
	}

	response.Success(w, record)
}
