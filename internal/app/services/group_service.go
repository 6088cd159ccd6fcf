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

const groupListCacheKey = "groups:all"

// GroupService manages student cohorts
type GroupService struct {
	repo  *repositories.GroupRepository
	cache *cache.Cache
}

// NewGroupService creates a new group service instance
func NewGroupService(repo *repositories.GroupRepository, c *cache.Cache) *GroupService {
	return &GroupService{repo: repo, cache: c}
}

// CreateGroup registers a cohort
func (s *GroupService) CreateGroup(ctx context.Context, req *dto.CreateGroupRequest) (*models.Group, error) {
	group := &models.Group{
		Name:       req.Name,
		CohortYear: req.CohortYear,
	}

	id, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	group.ID = id

	s.cache.Invalidate(groupListCacheKey)
	logger.Info().Int64("groupID", id).Str("name", group.Name).Msg("Group created")
	return group, nil
}

// GetGroup retrieves a group by ID
func (s *GroupService) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	return s.repo.GetGroupByID(ctx, id)
}

// ListGroups lists all groups, served from cache when fresh
func (s *GroupService) ListGroups(ctx context.Context, forceRefresh bool) ([]*models.Group, error) {
	value, err := s.cache.GetOrFetch(ctx, groupListCacheKey, func(ctx context.Context) (interface{}, error) {
		return s.repo.GetAllGroups(ctx)
	}, cache.Options{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}

	groups, ok := value.([]*models.Group)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for group list")
	}
	return groups, nil
}

// ListGroupStudents lists the members of a group
func (s *GroupService) ListGroupStudents(ctx context.Context, groupID int64) ([]*models.Student, error) {
	if _, err := s.repo.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.GetStudentsByGroup(ctx, groupID)
}

// UpdateGroup updates a group
func (s *GroupService) UpdateGroup(ctx context.Context, id int64, req *dto.CreateGroupRequest) (*models.Group, error) {
	group, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = req.Name
	group.CohortYear = req.CohortYear

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	s.cache.Invalidate(groupListCacheKey)
	return group, nil
}

// DeleteGroup removes a group; membership rows go via FK cascade
func (s *GroupService) DeleteGroup(ctx context.Context, id int64) error {
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(groupListCacheKey)
	logger.Info().Int64("groupID", id).Msg("Group deleted")
	return nil
}
