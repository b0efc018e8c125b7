package domain

const (
	EventNameCategoriesChanged  = "categories.changed"
	EventNamePlayersChanged     = "players.changed"
	EventNameStateChanged       = "state.changed"
	EventNameQuestionResolved   = "question.resolved"
	EventNameAnswerRecorded     = "answer.recorded"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

type EventCategoriesChanged struct {
	Categories []Category
}

func (EventCategoriesChanged) Name() string { return EventNameCategoriesChanged }

type EventPlayersChanged struct {
	Players []Player
}

func (EventPlayersChanged) Name() string { return EventNamePlayersChanged }

type EventStateChanged struct {
	State State
}

func (EventStateChanged) Name() string { return EventNameStateChanged }

// ResolveReason tells why a question left the screen.
type ResolveReason string

const (
	ResolveCorrect     ResolveReason = "correct"
	ResolveDailyDouble ResolveReason = "daily_double"
	ResolveExhausted   ResolveReason = "exhausted"
	ResolveTimeout     ResolveReason = "timeout"
	ResolveClosed      ResolveReason = "closed"
)

type EventQuestionResolved struct {
	Question Question
	Reason   ResolveReason
	// PlayerID is the player who closed the question, zero when nobody did.
	PlayerID int
}

func (EventQuestionResolved) Name() string { return EventNameQuestionResolved }

type EventAnswerRecorded struct {
	PlayerID    int
	QuestionID  string
	Correct     bool
	Delta       int
	DailyDouble bool
}

func (EventAnswerRecorded) Name() string { return EventNameAnswerRecorded }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
