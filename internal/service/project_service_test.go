package service

import (
	"context"
	"testing"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service/mocks"
	"github.com/azorastack/market/pkg/uow"
	uowmocks "github.com/azorastack/market/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockProjectRepo *mocks.MockProjectRepository
	mockAuditRepo   *mocks.MockAuditLogRepository
	projectService  *ProjectService
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}

func (s *ProjectServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockProjectRepo = mocks.NewMockProjectRepository(s.mockCtrl)
	s.mockAuditRepo = mocks.NewMockAuditLogRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ProjectRepoName)).
		Return(s.mockProjectRepo, nil).AnyTimes()

	projectService, servErr := NewProjectService(s.mockUOW)
	s.Require().NoError(servErr)
	s.projectService = projectService
}

func (s *ProjectServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *ProjectServiceTestSuite) expectTxRepos() {
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProjectRepoName)).
		Return(s.mockProjectRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.AuditLogRepoName)).
		Return(s.mockAuditRepo, nil).AnyTimes()
}

func (s *ProjectServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func pendingProject() *domain.Project {
	return &domain.Project{
		ID:       5,
		SellerID: 20,
		Title:    "CRM Starter Kit",
		Price:    decimal.NewFromInt(10000),
		Status:   domain.ProjectStatusPending,
	}
}

func (s *ProjectServiceTestSuite) TestCreate() {
	s.mockProjectRepo.EXPECT().
		Create(gomock.Any(), repoargs.CreateProject{
			SellerID: 20,
			Title:    "CRM Starter Kit",
			Price:    decimal.NewFromInt(10000),
		}).
		Return(pendingProject(), nil)

	project, err := s.projectService.Create(context.Background(), 20, "CRM Starter Kit", decimal.NewFromInt(10000))

	s.Require().NoError(err)
	s.Equal(domain.ProjectStatusPending, project.Status)
}

func (s *ProjectServiceTestSuite) TestModerateApprove() {
	project := pendingProject()

	s.expectDo()
	s.expectTxRepos()

	s.mockProjectRepo.EXPECT().FindByID(gomock.Any(), project.ID).Return(project, nil)

	approved := *project
	approved.Status = domain.ProjectStatusApproved
	s.mockProjectRepo.EXPECT().
		UpdateStatus(gomock.Any(), project.ID, domain.ProjectStatusApproved).
		Return(&approved, nil)

	s.mockAuditRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.AuditLogCreate) error {
			s.Equal("PROJECT_MODERATED", args.Action)
			s.Equal(int64(99), args.UserID)
			s.Equal(project.ID, args.EntityID)
			return nil
		})

	got, err := s.projectService.Moderate(context.Background(), project.ID, 99, true)

	s.Require().NoError(err)
	s.Equal(domain.ProjectStatusApproved, got.Status)
}

func (s *ProjectServiceTestSuite) TestModerateReject() {
	project := pendingProject()

	s.expectDo()
	s.expectTxRepos()

	s.mockProjectRepo.EXPECT().FindByID(gomock.Any(), project.ID).Return(project, nil)

	rejected := *project
	rejected.Status = domain.ProjectStatusRejected
	s.mockProjectRepo.EXPECT().
		UpdateStatus(gomock.Any(), project.ID, domain.ProjectStatusRejected).
		Return(&rejected, nil)

	s.mockAuditRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	got, err := s.projectService.Moderate(context.Background(), project.ID, 99, false)

	s.Require().NoError(err)
	s.Equal(domain.ProjectStatusRejected, got.Status)
}

func (s *ProjectServiceTestSuite) TestModerateAlreadyModerated() {
	project := pendingProject()
	project.Status = domain.ProjectStatusApproved

	s.expectDo()
	s.expectTxRepos()

	s.mockProjectRepo.EXPECT().FindByID(gomock.Any(), project.ID).Return(project, nil)

	_, err := s.projectService.Moderate(context.Background(), project.ID, 99, true)

	var stateErr *domain.InvalidStateError
	s.Require().Error(err)
	s.Require().ErrorAs(err, &stateErr)
	s.Equal(string(domain.ProjectStatusApproved), stateErr.Current)
}
