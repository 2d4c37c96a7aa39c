// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger implements the credit arithmetic of quadratic voting.

Casting n votes on one option costs n² credits, so a vote against an option
(negative n) costs the same as a vote for it:

	ledger.Cost(3)  // 9
	ledger.Cost(-3) // 9

The remaining budget is always recomputed from the full allocation:

	left := ledger.Remaining(100, []int{3, -2, 0}) // 100 - 13 = 87

# Admission

CanAdjust decides whether a single +1 or -1 step on one option fits in the
remaining budget. Moving a count toward zero always frees credits and is
always allowed; moving it away from zero costs |c² - (c±1)²| and is allowed
only when that difference is no larger than the remaining credits.

	ledger.CanAdjust(9, ledger.Increment, 19) // true, 100 - 81 = 19 covers 19
	ledger.CanAdjust(0, ledger.Increment, 0)  // false, empty budget

Validate performs the same check over a whole allocation and is used before
a submitted ballot is persisted.
*/
package ledger
