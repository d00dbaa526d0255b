package assistant

import "github.com/HendryAvila/neuraldesk/internal/domain"

// openers holds three variants per sentiment. %s is the user name.
var openers = map[domain.Sentiment][3]string{
	domain.SentimentSteady: {
		"Hi %s, your priorities look balanced.",
		"%s, the day has a healthy shape.",
		"Good rhythm, %s: nothing is piling up.",
	},
	domain.SentimentStretch: {
		"%s, there is a lot of energy in flight today.",
		"Busy day ahead, %s. Let's keep it under control.",
		"%s, you are stretching a bit past a comfortable load.",
	},
	domain.SentimentOverloaded: {
		"%s, the load is above your estimated capacity.",
		"Red flag, %s: there is more work than hours today.",
		"%s, today needs hard choices because not everything fits.",
	},
}

var closings = map[domain.Sentiment]string{
	domain.SentimentSteady:     "Keep the pace, %s, and protect your breaks.",
	domain.SentimentStretch:    "Finish the first block before noon, %s, and the rest gets lighter.",
	domain.SentimentOverloaded: "Pick one key task, %s, and postpone or delegate the rest.",
}

// Keyword groups matched case-insensitively against the question.
var (
	progressKeywords = []string{"progress", "avance", "progreso"}
	calendarKeywords = []string{"calendar", "agenda", "calendario", "schedule"}
)

const (
	noFocusText     = "your main objective"
	noGoalText      = "give a goal a due date to see it here."
	noTasksText     = "add one to three tasks and I will shape your first block."
	noHabitsText    = "give a goal a due date to get reminders here."
	noEventsText    = "nothing is scheduled yet"
	defaultUserName = "friend"
)
