package service

import (
	"context"

	"toolshed-backend/internal/repository"
)

// countCommitments is the capacity ledger: committed units on a tool for an
// inclusive window are the overlapping capacity-holding allocations plus the
// overlapping pending reservations. The same counter runs lock-free on the
// pool and under the tool lock inside a transaction.
func countCommitments(ctx context.Context, counter repository.CommitmentCounter, q repository.CommitmentQuery) (int, error) {
	allocations, err := counter.CountConflictingAllocations(ctx, q)
	if err != nil {
		return 0, err
	}
	reservations, err := counter.CountConflictingReservations(ctx, q)
	if err != nil {
		return 0, err
	}
	return allocations + reservations, nil
}
