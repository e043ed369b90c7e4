package repositories

import (
	"context"
	"fmt"
	"time"

	"tutorhub/internal/database"
	"tutorhub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// resourceRepository implements ResourceRepository backed by Postgres.
type resourceRepository struct {
	*BaseRepository
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *database.Manager, logger *zap.Logger) ResourceRepository {
	return &resourceRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// CreateUpload records a shared learning resource
func (r *resourceRepository) CreateUpload(ctx context.Context, upload *models.Upload) error {
	if upload.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate upload id: %w", err)
		}
		upload.ID = id
	}

	upload.CreatedAt = time.Now()

	query := `
		INSERT INTO uploads (id, title, course, uploader, favorite_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.ExecContext(ctx, query,
		upload.ID, upload.Title, upload.Course, upload.Uploader,
		upload.FavoriteCount, upload.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}

	return nil
}

func (r *resourceRepository) CountUploadsByUploader(ctx context.Context, uploader string) (int, error) {
	query := `SELECT COUNT(*) FROM uploads WHERE uploader = $1`
	return r.CountContext(ctx, query, uploader)
}

// RecordInteraction appends a student's interaction with a resource
func (r *resourceRepository) RecordInteraction(ctx context.Context, interaction *models.ResourceInteraction) error {
	if interaction.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate interaction id: %w", err)
		}
		interaction.ID = id
	}

	interaction.CreatedAt = time.Now()

	query := `
		INSERT INTO resource_interactions (id, student_id, resource_id, title, course, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.ExecContext(ctx, query,
		interaction.ID, interaction.StudentID, interaction.ResourceID,
		interaction.Title, interaction.Course, interaction.Action, interaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record resource interaction: %w", err)
	}

	return nil
}

func (r *resourceRepository) CountInteractionsByStudent(ctx context.Context, studentID string, action models.InteractionAction) (int, error) {
	query := `SELECT COUNT(*) FROM resource_interactions WHERE student_id = $1 AND action = $2`
	return r.CountContext(ctx, query, studentID, action)
}
