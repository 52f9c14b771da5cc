package apierrors

import (
	"errors"
	"strings"

	betsProcessor "matchbet-server/internal/bets/processor"
	"matchbet-server/internal/calculator"
	catalogProcessor "matchbet-server/internal/catalog/processor"
	leaderboardProcessor "matchbet-server/internal/leaderboard/processor"
	"matchbet-server/internal/money"
	progressProcessor "matchbet-server/internal/progress/processor"
	"matchbet-server/internal/store"
)

// MapError converts domain/processor errors to APIErrors.
//
// If the error is already an APIError, it returns it as-is.
// If the error is a known domain error, it maps it to an appropriate APIError.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// Typed taxonomy shared by the calculator and the state machine
	var (
		validationErr *money.ValidationError
		calcErr       *calculator.CalculationError
		illegalErr    *progressProcessor.IllegalTransitionError
		notFoundErr   *progressProcessor.NotFoundError
		conflictErr   *progressProcessor.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		return BadRequest(CodeValidationError, validationErr.Error()).
			WithDetail("field", validationErr.Field).
			WithDetail("stage", validationErr.Stage)

	case errors.As(err, &calcErr):
		return Unprocessable(CodeCalculationError, calcErr.Error()).
			WithDetail("bet_type", string(calcErr.BetType)).
			WithDetail("stage", calcErr.Stage)

	case errors.As(err, &illegalErr):
		return Conflict(CodeIllegalTransition, illegalErr.Error()).
			WithDetail("stage", illegalErr.Stage).
			WithDetail("command", string(illegalErr.Command))

	case errors.As(err, &notFoundErr):
		return NotFound(notFoundCode(notFoundErr.Resource), notFoundErr.Error())

	case errors.As(err, &conflictErr):
		return Conflict(CodeConflict, conflictErr.Error())
	}

	switch {
	// Map bet processor errors
	case errors.Is(err, betsProcessor.ErrBetNotFound):
		return NotFound(CodeBetNotFound, "Bet not found")

	case errors.Is(err, betsProcessor.ErrBetLinked):
		return Conflict(CodeBetLinked, "Bet belongs to an offer; settle it through the offer progress")

	case errors.Is(err, betsProcessor.ErrBetAlreadySettled):
		return Conflict(CodeBetAlreadySettled, "Bet is already settled")

	case errors.Is(err, betsProcessor.ErrDuplicateBet):
		return Conflict(CodeConflict, "A bet with this ID already exists")

	// Map catalog processor errors
	case errors.Is(err, catalogProcessor.ErrOfferNotFound):
		return NotFound(CodeOfferNotFound, "Offer not found")

	case errors.Is(err, catalogProcessor.ErrPreferenceConflict):
		return BadRequest(CodePreferenceConflict, "A bookmaker cannot be both whitelisted and blacklisted")

	// Map leaderboard errors
	case errors.Is(err, leaderboardProcessor.ErrLeaderboardUnavailable):
		return ServiceUnavailable(CodeLeaderboardError, "Leaderboard is temporarily unavailable. Please try again later.", err)

	// Map store errors
	case errors.Is(err, store.ErrNotFound):
		return NotFound(CodeNotFound, "Resource not found")

	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrVersionConflict):
		return Conflict(CodeConflict, "The resource was modified concurrently")

	default:
		return mapExternalServiceError(err)
	}
}

func notFoundCode(resource string) string {
	switch resource {
	case "offer":
		return CodeOfferNotFound
	case "progress":
		return CodeProgressNotFound
	case "bet":
		return CodeBetNotFound
	default:
		return CodeNotFound
	}
}

// mapExternalServiceError attempts to identify external service errors
// and map them to appropriate service-specific error responses.
func mapExternalServiceError(err error) *APIError {
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "redis") {
		return ServiceUnavailable(
			CodeLeaderboardError,
			"Cache is temporarily unavailable. Please try again later.",
			err,
		)
	}

	// Default: Unknown error - return sanitized 500
	return InternalError(err)
}
