package auditRepo

import (
	"context"

	"stowage/database"
	"stowage/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AuditEventRepository persists the local trail of operator actions.
type AuditEventRepository interface {
	Create(ctx context.Context, event models.AuditEvent) (string, error)
	GetByReservationID(ctx context.Context, reservationID string) ([]models.AuditEvent, error)
	GetRecent(ctx context.Context, limit int64) ([]models.AuditEvent, error)
}

type mongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo returns a new AuditEventRepository instance using MongoDB.
func NewMongoAuditRepo() AuditEventRepository {
	db := database.MongoClient.Database("stowage")
	return &mongoAuditRepo{
		coll: db.Collection("audit_events"),
	}
}
