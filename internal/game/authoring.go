package game

// EditCategoryTitle renames a category in edit mode.
func (c *Controller) EditCategoryTitle(ci int, title string) Change {
	if !c.editMode || ci < 0 || ci >= len(c.categories) {
		return Change{}
	}

	c.categories[ci].Title = title

	return Change{Applied: true, Categories: true}
}

// EditQuestionContent replaces the texts of one question. Value, ID and flags are kept.
func (c *Controller) EditQuestionContent(ci, qi int, question, answer string) Change {
	if !c.editMode || !c.validCell(ci, qi) {
		return Change{}
	}

	q := &c.categories[ci].Questions[qi]
	q.Question = question
	q.Answer = answer
	c.editing = nil

	return Change{Applied: true, Categories: true}
}

func (c *Controller) CancelQuestionEdit() Change {
	if c.editing == nil {
		return Change{}
	}

	c.editing = nil

	return Change{Applied: true}
}

// RenamePlayer is refused while editing the board.
func (c *Controller) RenamePlayer(playerID int, name string) Change {
	if c.editMode {
		return Change{}
	}

	p, ok := c.player(playerID)
	if !ok {
		return Change{}
	}

	p.Name = name

	return Change{Applied: true, Players: true}
}
