package service

import (
	"errors"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/internal/repository"

	"github.com/google/uuid"
)

type RecordService struct {
	repo repository.RecordRepository
}

func NewRecordService(repo repository.RecordRepository) *RecordService {
	return &RecordService{repo: repo}
}

func (s *RecordService) Create(req *domain.CreateRecordRequest) (*domain.Record, error) {
	now := time.Now().UTC()

	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	record := &domain.Record{
		ID:          "record-" + uuid.New().String(),
		ComponentID: req.ComponentID,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *RecordService) Get(id string) (*domain.Record, error) {
	record, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *RecordService) List(componentID string) ([]*domain.Record, error) {
	return s.repo.List(componentID)
}
