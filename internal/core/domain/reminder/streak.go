package reminder

import (
	c "medbot/internal/core/domain/common"
	"medbot/internal/core/domain/localtime"
)

// NextStreak returns the streak after a confirmation for the local date this.
// Days without a confirmation never decrement the streak, they only make the
// next confirmation start over from one.
func NextStreak(priorConfirmedOn c.Optional[localtime.Date], priorStreak uint32, this localtime.Date) uint32 {
	if !priorConfirmedOn.IsPresent {
		return 1
	}
	if priorConfirmedOn.Value == this.PreviousDay() {
		return priorStreak + 1
	}
	return 1
}

func NextLongestStreak(longest uint32, streak uint32) uint32 {
	if streak > longest {
		return streak
	}
	return longest
}
