package domain

// Category is a column of the board.
type Category struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question is a single cell of the board. Answer is the clue shown first, Question is the
// response revealed afterwards.
type Question struct {
	ID            string `json:"id"`
	Answer        string `json:"answer"`
	Question      string `json:"question"`
	Value         int    `json:"value"`
	IsDailyDouble bool   `json:"isDailyDouble"`
	IsAnswered    bool   `json:"isAnswered"`
}

// Player is a seat at the table. Score may go negative.
type Player struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Leaderboard lists players sorted by score in descending order.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

type LeaderboardEntry struct {
	PlayerID int    `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

func CloneCategories(cs []Category) []Category {
	if cs == nil {
		return nil
	}

	out := make([]Category, len(cs))
	for i, c := range cs {
		out[i] = c
		out[i].Questions = append([]Question(nil), c.Questions...)
	}

	return out
}

func ClonePlayers(ps []Player) []Player {
	if ps == nil {
		return nil
	}

	return append([]Player(nil), ps...)
}
