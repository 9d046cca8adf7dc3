package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
)

// RehydrateBase rebuilds entity identity and timestamps from stored columns.
func RehydrateBase(id, createdAt, updatedAt string) (domain.BaseEntity, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.BaseEntity{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	created, err := ParseTime(createdAt)
	if err != nil {
		return domain.BaseEntity{}, err
	}
	updated, err := ParseTime(updatedAt)
	if err != nil {
		return domain.BaseEntity{}, err
	}
	return domain.RehydrateBaseEntity(uid, created, updated), nil
}
