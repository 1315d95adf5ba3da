package happy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt sets the voice of every email
const SystemPrompt = `You are Happy, the accountability buddy inside a to-do app called DoIt.

Voice:
- friendly and honest, casual rather than corporate
- witty, a little sarcastic, a light roast when it is earned
- never preachy, no motivational-poster lines

Format:
- short and punchy, plain text, contractions and lowercase energy
- exactly one emoji, in the subject line
- sign off with "- Happy"
- write like a friend texting, not like a productivity app

Reply with JSON only, with exactly two string keys, "subject" and "body".`

const outputLine = `Output: JSON with "subject" and "body" keys.`

func list(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func prompt(job string, context []string, task string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s\n\nContext:\n", job)
	for _, line := range context {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	fmt.Fprintf(&b, "\nTask: %s\n\n%s", task, outputLine)
	return b.String()
}

func morningPrompt(uc *UserContext) string {
	switch {
	case uc.TotalTasksToday == 0:
		return prompt("Empty Today List", []string{
			"Today's tasks: none",
			"Tomorrow's tasks: " + list(uc.TomorrowTasks),
			"Someday tasks: " + list(uc.SomedayTasks),
			"Day: " + uc.DayOfWeek,
		}, "Their Today list is empty. Check in: did they forget to plan, or is this a deliberate day off? Suggest pulling something in from Someday or lining up Tomorrow. Light, no guilt, a small roast is fine.")
	case uc.TotalTasksToday >= 5:
		return prompt("Planning Assist", []string{
			"Today's tasks: " + list(uc.TodayTasks),
			fmt.Sprintf("Total: %d", uc.TotalTasksToday),
			"Day: " + uc.DayOfWeek,
		}, "They have a lot today. Acknowledge it, propose a sensible order, and point out tasks that can be batched. Add one witty line and skip the productivity lecture.")
	default:
		return prompt("Morning Briefing", []string{
			"Today's tasks: " + list(uc.TodayTasks),
			fmt.Sprintf("Total: %d", uc.TotalTasksToday),
			"Day: " + uc.DayOfWeek,
		}, "Write a short morning email listing today's tasks with one tip on where to start. Casual and energizing, not cheesy.")
	}
}

func middayPrompt(uc *UserContext) string {
	pending := uc.Pending()
	oldest := pending[0]
	for _, t := range pending[1:] {
		if t.AgeHours > oldest.AgeHours {
			oldest = t
		}
	}
	return prompt("Midday Check-in", []string{
		fmt.Sprintf("Completed today: %d", uc.CompletedToday),
		fmt.Sprintf("Still pending: %d", uc.PendingToday),
		"Pending tasks: " + list(pending),
		fmt.Sprintf("Oldest pending task: %q (%d hours old)", oldest.Task, oldest.AgeHours),
	}, "Halfway through the day. Say what is done and what is left, call out anything that has been sitting for hours with a light roast, and nudge them on.")
}

func eveningPrompt(uc *UserContext) string {
	pending := make([]string, 0, uc.PendingToday)
	for _, t := range uc.Pending() {
		pending = append(pending, t.Task)
	}
	return prompt("End of Day Recap", []string{
		fmt.Sprintf("Completed: %d tasks", uc.CompletedToday),
		fmt.Sprintf("Missed/Pending: %d tasks", uc.PendingToday),
		"Completed list: " + list(uc.Completed()),
		"Pending list: " + list(pending),
		"Day: " + uc.DayOfWeek,
	}, "Recap the day: what got done and what did not. Hype them up if they crushed it, call it out gently if not, mention carryover, and end on a rest-up note.")
}

func celebrationPrompt(uc *UserContext) string {
	return prompt("All Tasks Done Celebration", []string{
		fmt.Sprintf("Tasks completed: %d", uc.CompletedToday),
		"Tasks list: " + list(uc.Completed()),
		fmt.Sprintf("Wins this week: %d", uc.WinsThisWeek),
	}, "Everything on Today is checked off. Write a short, cool celebration with maybe a joke about actually getting things done, and tell them to go relax.")
}

func stalePrompt(uc *UserContext) string {
	main := uc.StaleTasks[0]
	others := make([]string, 0, len(uc.StaleTasks)-1)
	for _, t := range uc.StaleTasks[1:] {
		others = append(others, t.Task)
	}
	return prompt("Stale Task Alert", []string{
		fmt.Sprintf("Stale task: %q", main.Task),
		fmt.Sprintf("Age: %d hours (%d days)", main.AgeHours, main.AgeHours/24),
		"Other stale tasks: " + list(others),
	}, "This task has sat untouched for over a day. Call it out and give three options: do it, move it to Someday, or delete it. If they keep dodging it maybe they do not want it. Friendly roast.")
}

func inactivityPrompt(uc *UserContext) string {
	return prompt("Inactivity Ping", []string{
		fmt.Sprintf("Days since last app open: %d", uc.DaysInactive),
		fmt.Sprintf("Pending tasks in Today: %d", uc.PendingToday),
		"Tasks list: " + list(uc.TodayTasks),
	}, "They have not opened the app in a while. Check they are alive, mention the tasks still waiting, light guilt and a friendly roast, and nudge them back.")
}

func fridayPrompt(uc *UserContext) string {
	pending := make([]string, 0, uc.PendingToday)
	for _, t := range uc.Pending() {
		pending = append(pending, t.Task)
	}
	return prompt("Friday Wind Down", []string{
		fmt.Sprintf("Tasks completed this week: %d", uc.WinsThisWeek),
		fmt.Sprintf("Tasks still pending: %d", uc.PendingToday),
		"Pending list: " + list(pending),
	}, "Friday evening. Close out the week with how many tasks they finished (roast them if it is low), tell them to take a break, and ask about weekend plans.")
}

func sundayPrompt(uc *UserContext) string {
	return prompt("Weekly Life Check-in", []string{
		fmt.Sprintf("Week's wins: %d", uc.WinsThisWeek),
		fmt.Sprintf("Current pending: %d", uc.PendingToday),
		"Day: Sunday evening",
	}, "Not about tasks. Ask how they are actually doing: what went well, what drained them, are they resting. Thoughtful but casual, no action required.")
}
