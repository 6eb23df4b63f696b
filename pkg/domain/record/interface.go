package record

import (
	"context"
	"errors"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
)

// ErrNotFound means no record exists for the given deployment id.
var ErrNotFound = errors.New("deployment record not found")

// Interface is the deployment record store. The canonical store is a
// hosted feature table on the GIS platform; records survive process
// restarts there.
type Interface interface {
	// List returns all deployment records.
	//
	// returns:
	//     - []domain.DeploymentRecord
	//     - error
	List(ctx context.Context) ([]domain.DeploymentRecord, error)

	// Get returns the record with the given deployment id.
	//
	// returns:
	//     - domain.DeploymentRecord
	//     - error: ErrNotFound when no such record exists
	Get(ctx context.Context, deploymentID string) (domain.DeploymentRecord, error)

	// Create inserts the record and sets its ObjectID.
	Create(ctx context.Context, r *domain.DeploymentRecord) error

	// Update rewrites the stored record identified by its ObjectID.
	Update(ctx context.Context, r *domain.DeploymentRecord) error

	// Delete removes the record row.
	Delete(ctx context.Context, objectID int) error
}
