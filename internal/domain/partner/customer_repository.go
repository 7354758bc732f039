package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence.
// tenantID is a mandatory argument on every method.
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	// FindByIDForUpdate loads the customer and locks its row until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	// ListIDs returns the IDs of every customer of the tenant, ordered for stable iteration
	ListIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
	Save(ctx context.Context, customer *Customer) error
	// SaveBalances persists only the formula-derived aggregate columns
	SaveBalances(ctx context.Context, customer *Customer) error
}
