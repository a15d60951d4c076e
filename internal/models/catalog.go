package models

const (
	CategoryGeneral = "general"
	CategoryEvent   = "event"

	// DefaultPostEventColor is used for event posts that do not pick a colour.
	DefaultPostEventColor = "#1976d2"

	// DefaultDiaryTitle is used for diary entries saved without a title.
	DefaultDiaryTitle = "Untitled entry"
)

// EventColors is the calendar palette; the first entry is the default.
var EventColors = []string{"#4b7bec", "#2ecc71", "#9b59b6", "#e67e22", "#1abc9c"}

// MoodNames lists the moods in display order.
var MoodNames = []string{"Happy", "Neutral", "Sad", "Stressed"}

// MoodSuggestions holds the tip shown after logging each mood.
var MoodSuggestions = map[string]string{
	"Happy":    "Keep going! Celebrate your progress today.",
	"Neutral":  "Take a small break and do something you enjoy.",
	"Sad":      "Reach out to a friend or write down your feelings.",
	"Stressed": "Pause for a few deep breaths and stretch your body.",
}

var Affirmations = []string{
	"You are capable of amazing things.",
	"Every small step counts.",
	"You deserve rest as much as success.",
	"Your feelings are valid.",
	"Progress, not perfection.",
	"You have overcome hard days before.",
}
