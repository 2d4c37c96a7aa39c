// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"fmt"
)

// Delta is a single-unit change applied to one option.
type Delta int

const (
	Decrement Delta = -1
	Increment Delta = 1
)

// DeltaOf maps the increment flag used by the ballot to a Delta.
func DeltaOf(increment bool) Delta {
	if increment {
		return Increment
	}
	return Decrement
}

var (
	ErrOverBudget     = errors.New("allocation exceeds credit budget")
	ErrLengthMismatch = errors.New("allocation length does not match options")
	ErrNegativeBudget = errors.New("credits per voter must not be negative")
)

// Cost returns the credits needed to hold count votes on one option.
func Cost(count int) int {
	return count * count
}

// TotalSpent sums the cost of every entry in the allocation.
func TotalSpent(allocation []int) int {
	total := 0
	for _, c := range allocation {
		total += Cost(c)
	}
	return total
}

// Remaining returns creditsPerVoter minus everything the allocation spends.
// The result is negative only for an over-budget allocation.
func Remaining(creditsPerVoter int, allocation []int) int {
	return creditsPerVoter - TotalSpent(allocation)
}

// StepCost is the absolute cost difference of moving current by delta.
func StepCost(current int, delta Delta) int {
	diff := Cost(current) - Cost(current+int(delta))
	if diff < 0 {
		return -diff
	}
	return diff
}

// CanAdjust reports whether current may move by delta given the credits
// that are still unspent. It looks only at the one option being changed.
func CanAdjust(current int, delta Delta, creditsRemaining int) bool {
	if current == 0 && creditsRemaining == 0 {
		return false
	}

	switch delta {
	case Increment:
		if current <= 0 {
			return true
		}
	case Decrement:
		if current >= 0 {
			return true
		}
	default:
		return false
	}

	return StepCost(current, delta) <= creditsRemaining
}

// Validate checks a complete allocation against the event it belongs to.
func Validate(creditsPerVoter, optionCount int, allocation []int) error {
	if creditsPerVoter < 0 {
		return ErrNegativeBudget
	}
	if len(allocation) != optionCount {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(allocation), optionCount)
	}
	if spent := TotalSpent(allocation); spent > creditsPerVoter {
		return fmt.Errorf("%w: spent %d of %d", ErrOverBudget, spent, creditsPerVoter)
	}
	return nil
}
