package askme

// An AcceptStore exposes the accepted-answer state of questions.
type AcceptStore interface {
	// AcceptedAnswer returns the currently accepted answer of a question,
	// with false when the question has none.
	AcceptedAnswer(questionID int64) (int64, bool, error)
	// SwapAcceptedAnswer clears any previously accepted answer of the
	// question and marks answerID as accepted, atomically.
	SwapAcceptedAnswer(questionID int64, answerID int64) error
}

// AcceptAnswer marks an answer as the chosen solution of its question. Only
// the question's author may accept. On the first acceptance for a question
// the answer's author is credited the accept bonus; swapping the accepted
// answer later re-awards nothing and revokes nothing from the previous
// author.
func AcceptAnswer(store AcceptStore, users ActivityLedger, question *Question, answer *Answer, callerID int64) error {
	if callerID == 0 {
		return ErrNotAuthenticated
	}

	if question.AuthorID != callerID {
		return ErrNotQuestionAuthor
	}

	if answer.QuestionID != question.ID {
		return ErrNotFound
	}

	prev, has, err := store.AcceptedAnswer(question.ID)
	if err != nil {
		return err
	}

	if has && prev == answer.ID {
		// accepting the already accepted answer is a no-op
		return nil
	}

	if err := store.SwapAcceptedAnswer(question.ID, answer.ID); err != nil {
		return err
	}

	if !has {
		return users.RecordAccept(answer.AuthorID)
	}

	return nil
}
