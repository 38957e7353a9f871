package pgrepo

import (
	"context"
	"encoding/json"

	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
)

type AuditLogRepository struct {
	db uow.DBTX
}

func NewAuditLogRepository(db uow.DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, args repoargs.AuditLogCreate) error {
	changes, marshalErr := json.Marshal(args.Changes)
	if marshalErr != nil {
		return convertErr(marshalErr, "marshaling audit changes for %s %d", args.EntityType, args.EntityID)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, changes)
		VALUES ($1, $2, $3, $4, $5)`,
		args.UserID, args.Action, args.EntityType, args.EntityID, changes)
	if err != nil {
		return convertErr(err, "creating audit log for %s %d", args.EntityType, args.EntityID)
	}
	return nil
}
