package budget

// Budget is a snapshot of a token's word quota.
type Budget struct {
	wordsLimit     int64
	wordsUsed      int64
	wordsRemaining int64
	isExhausted    bool
}

// New creates a Budget snapshot. Remaining is derived from limit and used.
func New(limit, used int64) Budget {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Budget{
		wordsLimit:     limit,
		wordsUsed:      used,
		wordsRemaining: remaining,
		isExhausted:    remaining == 0,
	}
}

// WordsLimit returns the word cap.
func (b Budget) WordsLimit() int64 { return b.wordsLimit }

// WordsUsed returns the words consumed so far.
func (b Budget) WordsUsed() int64 { return b.wordsUsed }

// WordsRemaining returns the words left.
func (b Budget) WordsRemaining() int64 { return b.wordsRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }
