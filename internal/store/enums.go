package store

// Offer catalog ENUMs
const (
	OfferTypeWelcome      = "welcome"
	OfferTypeReload       = "reload"
	OfferTypeFreeBet      = "free_bet"
	OfferTypeRiskFree     = "risk_free"
	OfferTypeEnhancedOdds = "enhanced_odds"
	OfferTypeCashback     = "cashback"
	OfferTypeOther        = "other"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Progress stage ENUMs
const (
	StageDiscovered        = "discovered"
	StageSelected          = "selected"
	StageSigningUp         = "signing_up"
	StageAccountCreated    = "account_created"
	StageQualifyingPending = "qualifying_pending"
	StageQualifyingPlaced  = "qualifying_placed"
	StageQualifyingSettled = "qualifying_settled"
	StageFreeBetPending    = "free_bet_pending"
	StageFreeBetAvailable  = "free_bet_available"
	StageFreeBetPlaced     = "free_bet_placed"
	StageFreeBetSettled    = "free_bet_settled"
	StageCompleted         = "completed"
	StageSkipped           = "skipped"
	StageExpired           = "expired"
	StageFailed            = "failed"
)

// TerminalStages are history; at most one record per (user, offer) sits
// outside this set.
var TerminalStages = []string{StageCompleted, StageSkipped, StageExpired, StageFailed}

func IsTerminalStage(stage string) bool {
	for _, s := range TerminalStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Bet ENUMs
const (
	BetTypeQualifying = "qualifying"
	BetTypeFreeBetSNR = "free_bet_snr"
	BetTypeFreeBetSR  = "free_bet_sr"
)

const (
	BetOutcomePending = "pending"
	BetOutcomeBackWon = "back_won"
	BetOutcomeLayWon  = "lay_won"
)

// Bookmaker preference ENUMs
const (
	PreferenceWhitelist = "whitelist"
	PreferenceBlacklist = "blacklist"
)
