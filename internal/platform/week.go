package platform

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gridironlab/ffreport/internal/config"
)

// Confirm answers an interactive yes/no prompt. The core never talks to a
// terminal itself — cmd supplies the real prompt, tests supply canned
// answers.
type Confirm func(prompt string) (bool, error)

// ValidateWeek resolves the requested report week ("default" or an explicit
// week number) against the platform's reported current week.
//
// Validation only applies to the current season, and a season stays current
// through its off-season window: until September of the following calendar
// year. Older seasons are complete, so any explicit week is accepted as-is
// and "default" resolves to the final week of the season.
//
// For the current season:
//   - "default" resolves to currentWeek-1; if the first week is not yet
//     complete, the caller must confirm reporting on an incomplete week.
//   - an explicit week outside [1, NFLSeasonLength] is an error.
//   - an explicit week that is not yet complete (>= currentWeek) requires
//     confirmation; declining is an error.
//
// The function is deterministic and side-effect-free apart from the confirm
// callback, so calling it twice with the same confirmed inputs yields the
// same resolved week.
func ValidateWeek(requested string, currentWeek, season int, now time.Time, confirm Confirm) (int, error) {
	currentSeason := now.Year() == season || (now.Year() == season+1 && now.Month() < time.September)

	if !currentSeason {
		if requested == config.WeekDefault {
			return config.NFLSeasonLength, nil
		}
		week, err := strconv.Atoi(requested)
		if err != nil {
			return 0, fmt.Errorf("week for report must be %q or an integer from 1 to %d, got %q",
				config.WeekDefault, config.NFLSeasonLength, requested)
		}
		return week, nil
	}

	if requested == config.WeekDefault {
		if currentWeek-1 > 0 {
			return currentWeek - 1, nil
		}
		ok, err := confirm("The first week of the season is not yet complete. Are you sure you want to generate a report for an incomplete week?")
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("should not report on an incomplete week")
		}
		return currentWeek, nil
	}

	week, err := strconv.Atoi(requested)
	if err != nil || week < 1 || week > config.NFLSeasonLength {
		return 0, fmt.Errorf("week for report must be %q or an integer from 1 to %d, got %q",
			config.WeekDefault, config.NFLSeasonLength, requested)
	}

	if week <= currentWeek-1 {
		return week, nil
	}

	ok, err := confirm(fmt.Sprintf("Week %d is not yet complete. Are you sure you want to generate a report for an incomplete week?", week))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("should not report on an incomplete week")
	}
	return week, nil
}
