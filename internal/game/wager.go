package game

// SelectWagerer picks the player who plays the open Daily Double. Any player is eligible
// until the wager is submitted.
func (c *Controller) SelectWagerer(playerID int) Change {
	o := c.open
	if o == nil || !c.question(o).IsDailyDouble || o.wagerSubmitted {
		return Change{}
	}

	if _, ok := c.player(playerID); !ok {
		return Change{}
	}

	o.answering = playerID

	return Change{Applied: true}
}

// MaxWager is the larger of the player's score and 1000.
func (c *Controller) MaxWager(playerID int) int {
	p, ok := c.player(playerID)
	if !ok {
		return wagerFloor
	}

	return max(p.Score, wagerFloor)
}

// SubmitWager clamps amount into [5, MaxWager] and unlocks the question.
func (c *Controller) SubmitWager(amount int) Change {
	o := c.open
	if o == nil || o.answering == noPlayer || !c.question(o).IsDailyDouble || o.wagerSubmitted {
		return Change{}
	}

	o.wager = min(max(amount, minWager), c.MaxWager(o.answering))
	o.wagerSubmitted = true

	return Change{Applied: true}
}
