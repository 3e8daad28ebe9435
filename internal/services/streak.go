package services

import "time"

// LongestStreak returns the length of the longest run of consecutive
// calendar days in the given slice. Days must be UTC midnights, sorted
// ascending and deduplicated, the way the activity repository returns
// them. An empty slice yields 0, a single day yields 1.
func LongestStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}

	maxRun := 1
	currentRun := 1
	for i := 1; i < len(days); i++ {
		// UTC midnights have no DST, so exactly 24h means adjacent days.
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			currentRun++
		} else {
			currentRun = 1
		}
		if currentRun > maxRun {
			maxRun = currentRun
		}
	}
	return maxRun
}
