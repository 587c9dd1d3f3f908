package services

import (
	"fmt"

	"svco-apply/internal/core/domain"
)

// FeeTable is the injectable pricing table for the application fee. Amounts
// are in the smallest currency unit. Base covers a team with up to one
// co-founder; every additional co-founder adds Increment.
type FeeTable struct {
	Base          int64
	Increment     int64
	MaxCofounders int
}

// FeeService computes the tiered application fee from team size.
type FeeService struct {
	table FeeTable
}

// NewFeeService creates a new fee service
func NewFeeService(table FeeTable) *FeeService {
	return &FeeService{table: table}
}

// Fee returns the application fee for a team with the given co-founder
// count. Deterministic and side-effect free.
func (s *FeeService) Fee(cofounderCount int) (int64, error) {
	if cofounderCount < 0 {
		return 0, fmt.Errorf("%w: co-founder count must not be negative", domain.ErrValidation)
	}
	if cofounderCount > s.table.MaxCofounders {
		return 0, fmt.Errorf("%w: at most %d co-founders allowed", domain.ErrValidation, s.table.MaxCofounders)
	}

	extra := cofounderCount - 1
	if extra < 0 {
		extra = 0
	}
	return s.table.Base + int64(extra)*s.table.Increment, nil
}

// MaxCofounders returns the co-founder limit from the pricing table.
func (s *FeeService) MaxCofounders() int {
	return s.table.MaxCofounders
}
