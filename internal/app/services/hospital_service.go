package services

import (
	"context"
	"fmt"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/pkg/cache"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

const hospitalListCacheKey = "hospitals:all"

// HospitalService manages the hospital catalogue. The full list is cached
// since it changes rarely and every student form reads it.
type HospitalService struct {
	repo  *repositories.HospitalRepository
	cache *cache.Cache
}

// NewHospitalService creates a new hospital service instance
func NewHospitalService(repo *repositories.HospitalRepository, c *cache.Cache) *HospitalService {
	return &HospitalService{repo: repo, cache: c}
}

// CreateHospital registers a hospital
func (s *HospitalService) CreateHospital(ctx context.Context, req *dto.CreateHospitalRequest) (*models.Hospital, error) {
	hospital := &models.Hospital{
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
	}

	id, err := s.repo.CreateHospital(ctx, hospital)
	if err != nil {
		return nil, err
	}
	hospital.ID = id

	s.cache.Invalidate(hospitalListCacheKey)
	logger.Info().Int64("hospitalID", id).Str("name", hospital.Name).Msg("Hospital created")
	return hospital, nil
}

// GetHospital retrieves a hospital by ID
func (s *HospitalService) GetHospital(ctx context.Context, id int64) (*models.Hospital, error) {
	return s.repo.GetHospitalByID(ctx, id)
}

// ListHospitals lists all hospitals, served from cache when fresh
func (s *HospitalService) ListHospitals(ctx context.Context, forceRefresh bool) ([]*models.Hospital, error) {
	value, err := s.cache.GetOrFetch(ctx, hospitalListCacheKey, func(ctx context.Context) (interface{}, error) {
		return s.repo.GetAllHospitals(ctx)
	}, cache.Options{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}

	hospitals, ok := value.([]*models.Hospital)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for hospital list")
	}
	return hospitals, nil
}

// UpdateHospital updates a hospital
func (s *HospitalService) UpdateHospital(ctx context.Context, id int64, req *dto.CreateHospitalRequest) (*models.Hospital, error) {
	hospital, err := s.repo.GetHospitalByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hospital.Name = req.Name
	hospital.City = req.City
	hospital.Address = req.Address

	if err := s.repo.UpdateHospital(ctx, hospital); err != nil {
		return nil, err
	}

	s.cache.Invalidate(hospitalListCacheKey)
	return hospital, nil
}

// DeleteHospital removes a hospital without attached students
func (s *HospitalService) DeleteHospital(ctx context.Context, id int64) error {
	if err := s.repo.DeleteHospital(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(hospitalListCacheKey)
	logger.Info().Int64("hospitalID", id).Msg("Hospital deleted")
	return nil
}
