// Package catalog provides access to previously registered API
// definitions. The engine only consumes the Catalog interface; remote
// registries can implement it, and Dir provides a local directory-backed
// implementation for the CLI.
package catalog

import (
	"context"

	"github.com/gregcmartin/doppel/internal/models"
)

// Catalog is the source of existing API definitions a candidate is
// compared against. A nil API or empty listing means "nothing to
// compare", not an error.
type Catalog interface {
	// GetAPI resolves one API by reference, returning nil when the
	// reference is unknown
	GetAPI(ctx context.Context, ref string) (*models.ApiModel, error)

	// GetAllAPIs lists every API registered in the catalog
	GetAllAPIs(ctx context.Context) ([]*models.ApiModel, error)
}
