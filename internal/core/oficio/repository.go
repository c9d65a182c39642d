package oficio

import "context"

// Repository defines the persistence operations for oficios and their
// tracking history.
type Repository interface {
	// Create persists a new oficio and returns its ID.
	Create(ctx context.Context, of Oficio) (int64, error)

	// Update replaces the mutable fields of an existing oficio.
	Update(ctx context.Context, of Oficio) error

	// FindByID retrieves an oficio by ID. Returns nil if not found.
	FindByID(ctx context.Context, id int64) (*Oficio, error)

	// ExistsNumero checks whether a document number is already taken.
	ExistsNumero(ctx context.Context, numero string) (bool, error)

	// List retrieves oficios with pagination and filtering.
	// page is 1-based; size is the page length.
	// Returns the page of oficios and the total row count.
	List(ctx context.Context, page, size int, filtro Filtro) ([]Oficio, int, error)

	// AppendSeguimiento records a tracking event and updates the oficio's
	// derived UltimoEstado in the same transaction.
	AppendSeguimiento(ctx context.Context, seg Seguimiento) error

	// Seguimientos returns the tracking history of an oficio in
	// chronological order.
	Seguimientos(ctx context.Context, oficioID int64) ([]Seguimiento, error)
}
