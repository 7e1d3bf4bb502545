package indel

import "fmt"

// Config holds the per-base event probabilities and length parameters.
type Config struct {
	InsertProb     float64 // Per-base probability of an insertion
	InsertLenParam float64 // Insertion length is Geometric(1-InsertLenParam)+1
	DeleteProb     float64 // Per-base probability of a deletion
	DeleteLenParam float64 // Deletion length is Geometric(1-DeleteLenParam)+1
	Seed           *uint64 // Random seed (default: random)
}

// Validate checks that probabilities lie in [0,1] and length parameters
// in [0,1).
func (c Config) Validate() error {
	if !(c.InsertProb >= 0 && c.InsertProb <= 1) {
		return fmt.Errorf("insert probability must be >= 0 and <= 1, got %v", c.InsertProb)
	}
	if !(c.DeleteProb >= 0 && c.DeleteProb <= 1) {
		return fmt.Errorf("delete probability must be >= 0 and <= 1, got %v", c.DeleteProb)
	}
	if !(c.InsertLenParam >= 0 && c.InsertLenParam < 1) {
		return fmt.Errorf("insert length parameter must be >= 0 and < 1, got %v", c.InsertLenParam)
	}
	if !(c.DeleteLenParam >= 0 && c.DeleteLenParam < 1) {
		return fmt.Errorf("delete length parameter must be >= 0 and < 1, got %v", c.DeleteLenParam)
	}
	return nil
}

// Passthrough reports whether no event can ever happen.
func (c Config) Passthrough() bool {
	return c.InsertProb == 0 && c.DeleteProb == 0
}
