package store

import "github.com/mlecomte/papote/internal/models"

// Store is the persistence collaborator: one keyed collection of user
// records, always read in full and replaced in full. There is no row-level
// access; every mutating request performs its own load-modify-save cycle.
//
// Implementations must tolerate an absent collection (initialize empty) and
// corrupt content (log and degrade to empty rather than fail the request).
// They are not safe against overlapping read-modify-write cycles: the last
// SaveAll wins.
type Store interface {
	LoadAll() ([]models.User, error)
	SaveAll(users []models.User) error
}
