package service

import (
	"time"

	"github.com/medforo/medforo/internal/models"
)

// banThresholdDays maps a timed ban duration to its length in days. The
// second return is false for permanent or unrecognized durations, which
// never expire.
func banThresholdDays(duration string) (int, bool) {
	switch duration {
	case models.BanDuration1Day:
		return 1, true
	case models.BanDuration7Days:
		return 7, true
	case models.BanDuration30Days:
		return 30, true
	}
	return 0, false
}

// banExpired reports whether a timed ban has run out at the given instant
func banExpired(ban *models.Ban, now time.Time) bool {
	days, expires := banThresholdDays(ban.Duration)
	if !expires {
		return false
	}
	return !now.Before(ban.BannedAt.AddDate(0, 0, days))
}

// validBanDuration reports whether the duration is one of the accepted values
func validBanDuration(duration string) bool {
	if duration == models.BanDurationPermanent {
		return true
	}
	_, ok := banThresholdDays(duration)
	return ok
}
