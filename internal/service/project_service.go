package service

import (
	"context"
	"fmt"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/shopspring/decimal"
)

type ProjectService struct {
	uow         uow.UOW
	projectRepo ProjectRepository
}

func NewProjectService(u uow.UOW) (*ProjectService, error) {
	projectRepo, err := uow.GetRepositoryAs[ProjectRepository](u, uow.RepositoryName(repoargs.ProjectRepoName))
	if err != nil {
		return nil, err
	}
	return &ProjectService{
		uow:         u,
		projectRepo: projectRepo,
	}, nil
}

// Create submits a project for moderation. It stays PENDING_REVIEW until an
// admin approves it.
func (s *ProjectService) Create(
	ctx context.Context,
	sellerID int64,
	title string,
	price decimal.Decimal,
) (*domain.Project, error) {
	project, err := s.projectRepo.Create(ctx, repoargs.CreateProject{
		SellerID: sellerID,
		Title:    title,
		Price:    price,
	})
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return project, nil
}

func (s *ProjectService) ListApproved(ctx context.Context, page repoargs.Page) ([]domain.Project, error) {
	projects, err := s.projectRepo.ListApproved(ctx, page)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return projects, nil
}

// Moderate resolves a PENDING_REVIEW project to APPROVED or REJECTED and
// records the decision in the audit trail.
func (s *ProjectService) Moderate(
	ctx context.Context,
	projectID int64,
	adminID int64,
	approve bool,
) (*domain.Project, error) {
	var project *domain.Project

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		projectRepo, repoErr := uow.GetAs[ProjectRepository](tx, uow.RepositoryName(repoargs.ProjectRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		current, findErr := projectRepo.FindByID(c, projectID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if current.Status != domain.ProjectStatusPending {
			return domain.NewInvalidStateError("project", string(current.Status), "already moderated")
		}

		status := domain.ProjectStatusRejected
		if approve {
			status = domain.ProjectStatusApproved
		}

		var updateErr error
		project, updateErr = projectRepo.UpdateStatus(c, projectID, status)
		if updateErr != nil {
			return updateErr //nolint:wrapcheck
		}

		return writeAuditLog(c, tx, repoargs.AuditLogCreate{
			UserID:     adminID,
			Action:     "PROJECT_MODERATED",
			EntityType: "project",
			EntityID:   projectID,
			Changes:    map[string]any{"status": string(status)},
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("moderating project %d: %w", projectID, txErr)
	}
	return project, nil
}

func writeAuditLog(ctx context.Context, tx uow.TX, args repoargs.AuditLogCreate) error {
	auditRepo, repoErr := uow.GetAs[AuditLogRepository](tx, uow.RepositoryName(repoargs.AuditLogRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	return auditRepo.Create(ctx, args) //nolint:wrapcheck
}
