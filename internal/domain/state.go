package domain

// Phase is the lifecycle step of the question currently on screen.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseHidden   Phase = "hidden"
	PhaseRevealed Phase = "revealed"
)

// State is a read-only projection of the session, rendered by the presentation layer.
type State struct {
	Categories []Category `json:"categories"`
	Players    []Player   `json:"players"`

	GameStarted   bool `json:"gameStarted"`
	EditMode      bool `json:"editMode"`
	GameOver      bool `json:"gameOver"`
	CurrentPlayer int  `json:"currentPlayer"`

	Phase            Phase             `json:"phase"`
	SelectedQuestion *SelectedQuestion `json:"selectedQuestion,omitempty"`
	ShowAnswer       bool              `json:"showAnswer"`
	AnsweringPlayer  int               `json:"answeringPlayer,omitempty"`
	AttemptedPlayers []int             `json:"attemptedPlayers"`
	WagerAmount      int               `json:"wagerAmount"`
	WagerSubmitted   bool              `json:"wagerSubmitted"`
	MaxWager         int               `json:"maxWager,omitempty"`

	EditingQuestion *QuestionDraft `json:"editingQuestion,omitempty"`
}

type SelectedQuestion struct {
	CategoryIndex int      `json:"categoryIndex"`
	QuestionIndex int      `json:"questionIndex"`
	Token         uint64   `json:"token"`
	Question      Question `json:"question"`
}

// QuestionDraft is the edit form opened by selecting a cell in edit mode.
type QuestionDraft struct {
	CategoryIndex int    `json:"categoryIndex"`
	QuestionIndex int    `json:"questionIndex"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}
