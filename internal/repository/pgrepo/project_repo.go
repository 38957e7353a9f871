package pgrepo

import (
	"context"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `id, created_at, updated_at, seller_id, title, price, status, sales_count`

type ProjectRepository struct {
	db uow.DBTX
}

func NewProjectRepository(db uow.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, args repoargs.CreateProject) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO projects (seller_id, title, price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+projectColumns,
		args.SellerID, args.Title, args.Price, domain.ProjectStatusPending)

	project, err := scanProject(row)
	if err != nil {
		return nil, convertErr(err, "creating project `%s`", args.Title)
	}
	return project, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, convertErr(err, "finding project by id %d", id)
	}
	return project, nil
}

func (r *ProjectRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.ProjectStatusType,
) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE projects SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+projectColumns, id, status)

	project, err := scanProject(row)
	if err != nil {
		return nil, convertErr(err, "updating status of project %d", id)
	}
	return project, nil
}

func (r *ProjectRepository) IncrementSalesCount(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET sales_count = sales_count + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "incrementing sales count of project %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "incrementing sales count of project %d", id)
	}
	return nil
}

func (r *ProjectRepository) ListApproved(ctx context.Context, page repoargs.Page) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		domain.ProjectStatusApproved, page.Limit, page.Offset())
	if err != nil {
		return nil, convertErr(err, "listing approved projects")
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing approved projects")
		}
		projects = append(projects, *project)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing approved projects")
	}
	return projects, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.SellerID, &p.Title, &p.Price, &p.Status, &p.SalesCount)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
