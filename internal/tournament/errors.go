package tournament

import "errors"

// Match report validation
var (
	ErrScoreMissing       = errors.New("both scores must be entered")
	ErrScoreOutOfRange    = errors.New("scores must be between 0 and 4")
	ErrNoWinningScore     = errors.New("one side must reach 4 games")
	ErrBothScoresWinning  = errors.New("both sides cannot have 4 games")
	ErrWinnerRequired     = errors.New("a winner must be chosen")
	ErrWinnerNotInMatch   = errors.New("winner must be one of the two players")
	ErrRetiredScore       = errors.New("a retired match must have both scores below 4")
	ErrUnknownStatus      = errors.New("unknown match status")
	ErrPlayersNotDistinct = errors.New("a match needs two different players")
)

// Slot assignment and round progression
var (
	ErrEmptyPlayerName     = errors.New("player name is empty")
	ErrPlayerAlreadyPlaced = errors.New("player is already placed in a match")
	ErrAllSlotsFilled      = errors.New("all slots filled")
	ErrResultReported      = errors.New("match already has a reported result")
	ErrGroupNotEmptyable   = errors.New("only knockout matches can be cleared")
	ErrRoundNotReady       = errors.New("all matches must be reported and all slots filled before the next round")
	ErrInvalidPlayerCount  = errors.New("number of players must be even and at least 2")
	ErrTournamentDecided   = errors.New("the final has already been created")
)
