package services

import "errors"

// Shared errors used across services and by the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchResultNotFound = errors.New("match result not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrTeamNotFound        = errors.New("team not found")

	ErrMatchInvalidStatus           = errors.New("invalid match status provided")
	ErrMatchInvalidStatusTransition = errors.New("invalid match status transition")
	ErrMatchInvalidWinnerSide       = errors.New("winner side must be 1 or 2")
	ErrMatchDrawWithWinner          = errors.New("a drawn match cannot have a winner side")
	ErrMatchTournamentRequired      = errors.New("match tournament is required")
	ErrMatchParticipantsRequired    = errors.New("both match sides need a participant")
	ErrMatchSideMixed               = errors.New("a match side is either a team or a player, not both")
	ErrMatchReferenceInvalid        = errors.New("match references an unknown tournament or participant")
	ErrBulkEmpty                    = errors.New("bulk request contains no items")
	ErrBulkTooLarge                 = errors.New("bulk request contains too many items")

	ErrMatchResultInvalidScore = errors.New("match result scores must not be negative")
	ErrMatchResultInvalidSet   = errors.New("match result set number must be positive")
	ErrMatchResultSetConflict  = errors.New("a result for this set already exists")

	ErrStandingInvalid = errors.New("invalid standing record")

	ErrSnapshotStorageDisabled = errors.New("snapshot storage is not configured")
)
