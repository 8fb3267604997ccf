package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-care-tracker/internal/domain/care"
)

// OwnedPet devuelve la mascota solo si pertenece a userID.
// Un pet ajeno responde ErrNotFound para no filtrar su existencia.
func (s *Service) OwnedPet(ctx context.Context, petID, userID string) (Pet, error) {
	if strings.TrimSpace(userID) == "" {
		return Pet{}, ErrNotFound
	}
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != userID {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

// CarePet implementa care.PetAccess.
// Se usa para evitar ciclos de imports entre módulos (pets -> care).
func (s *Service) CarePet(ctx context.Context, petID, userID string) (care.CarePet, error) {
	p, err := s.OwnedPet(ctx, petID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			return care.CarePet{}, fmt.Errorf("%w: %v", care.ErrNotFound, err)
		}
		return care.CarePet{}, err
	}
	return care.CarePet{ID: p.ID, Name: p.Name, Config: p.CareConfig()}, nil
}
