package happy

import (
	"fmt"
	"time"
)

// Job names accepted by Run. hourly_check fans out into the stale_task and
// inactivity emails, which are logged under their own names.
const (
	JobMorning     = "morning"
	JobMidday      = "midday"
	JobEvening     = "evening"
	JobFriday      = "friday"
	JobSunday      = "sunday"
	JobHourlyCheck = "hourly_check"
	JobCelebration = "celebration"

	JobStaleTask  = "stale_task"
	JobInactivity = "inactivity"
)

// ScheduledJobs are the jobs a cron entry may run
var ScheduledJobs = []string{JobMorning, JobMidday, JobEvening, JobFriday, JobSunday, JobHourlyCheck}

const inactiveDays = 2

// ValidJob reports whether job can be run or triggered
func ValidJob(job string) error {
	if job == JobCelebration {
		return nil
	}
	for _, j := range ScheduledJobs {
		if j == job {
			return nil
		}
	}
	return fmt.Errorf("unknown job %q", job)
}

// dispatch is one email a job decided to send
type dispatch struct {
	jobType string
	prompt  string
}

// plan decides which emails job produces for a user whose local time is
// local. It is pure so the schedule can be tested without a clock.
func plan(job string, local time.Time, uc *UserContext) []dispatch {
	hour := local.Hour()
	day := local.Weekday()

	switch job {
	case JobMorning:
		if hour == 8 {
			return []dispatch{{JobMorning, morningPrompt(uc)}}
		}
	case JobMidday:
		if hour == 14 && uc.PendingToday > 0 {
			return []dispatch{{JobMidday, middayPrompt(uc)}}
		}
	case JobEvening:
		if hour == 20 && uc.TotalTasksToday > 0 {
			return []dispatch{{JobEvening, eveningPrompt(uc)}}
		}
	case JobFriday:
		if day == time.Friday && hour == 18 {
			return []dispatch{{JobFriday, fridayPrompt(uc)}}
		}
	case JobSunday:
		if day == time.Sunday && hour == 19 {
			return []dispatch{{JobSunday, sundayPrompt(uc)}}
		}
	case JobHourlyCheck:
		var out []dispatch
		if len(uc.StaleTasks) > 0 {
			out = append(out, dispatch{JobStaleTask, stalePrompt(uc)})
		}
		if uc.DaysInactive >= inactiveDays {
			out = append(out, dispatch{JobInactivity, inactivityPrompt(uc)})
		}
		return out
	case JobCelebration:
		if uc.PendingToday == 0 && uc.CompletedToday > 0 {
			return []dispatch{{JobCelebration, celebrationPrompt(uc)}}
		}
	}
	return nil
}

// localMidnight is the start of the calendar day containing local
func localMidnight(local time.Time) time.Time {
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
}
