package pets

import "context"

// Repository persiste perfiles de mascotas. GetByID devuelve ErrNotFound
// cuando no existe; ListByOwner ordena por fecha de alta.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	// Delete borra la mascota y su historial de cuidados.
	Delete(ctx context.Context, id string) error
}
