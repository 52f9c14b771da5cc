package processor

import "matchbet-server/internal/store"

type Command string

const (
	CommandDiscoverOffer            Command = "discover_offer"
	CommandStartOffer               Command = "start_offer"
	CommandConfirmSignup            Command = "confirm_signup"
	CommandStartQualifying          Command = "start_qualifying"
	CommandRecordQualifyingBet      Command = "record_qualifying_bet"
	CommandConfirmQualifyingOutcome Command = "confirm_qualifying_outcome"
	CommandConfirmFreeBetReceived   Command = "confirm_free_bet_received"
	CommandRecordFreeBet            Command = "record_free_bet"
	CommandConfirmFreeBetOutcome    Command = "confirm_free_bet_outcome"
	CommandComplete                 Command = "complete"
	CommandSkip                     Command = "skip"
	CommandMarkExpired              Command = "mark_expired"
	CommandMarkFailed               Command = "mark_failed"
	CommandCorrectStage             Command = "correct_stage"

	// Issued by the processor itself after another command lands.
	commandSkipQualifying Command = "skip_qualifying"
	commandReleaseFreeBet Command = "release_free_bet"
)

type SignupStep string

const (
	SignupStepStarted   SignupStep = "started"
	SignupStepCompleted SignupStep = "completed"
)

// noRecord is the "from" stage of commands that create a record.
const noRecord = ""

// stageOrder ranks the forward path. Terminal stages other than completed
// are off the path and have no rank.
var stageOrder = map[string]int{
	store.StageDiscovered:        0,
	store.StageSelected:          1,
	store.StageSigningUp:         2,
	store.StageAccountCreated:    3,
	store.StageQualifyingPending: 4,
	store.StageQualifyingPlaced:  5,
	store.StageQualifyingSettled: 6,
	store.StageFreeBetPending:    7,
	store.StageFreeBetAvailable:  8,
	store.StageFreeBetPlaced:     9,
	store.StageFreeBetSettled:    10,
	store.StageCompleted:         11,
}

// KnownStage reports whether s names a stage.
func KnownStage(s string) bool {
	if _, ok := stageOrder[s]; ok {
		return true
	}
	return store.IsTerminalStage(s)
}

// reached reports whether stage is at or beyond target on the forward path.
func reached(stage, target string) bool {
	s, ok := stageOrder[stage]
	if !ok {
		return false
	}
	t, ok := stageOrder[target]
	return ok && s >= t
}

type effect uint8

const (
	// effectRefresh recomputes the user's profit summary in the same transaction.
	effectRefresh effect = 1 << iota
	// effectSettle settles a linked bet.
	effectSettle
	// effectLinkBet creates or links a bet.
	effectLinkBet
)

type transitionKey struct {
	from    string
	command Command
}

type transition struct {
	next    []string
	effects effect
}

var transitions = map[transitionKey]transition{
	{noRecord, CommandDiscoverOffer}: {next: []string{store.StageDiscovered}},
	{noRecord, CommandStartOffer}:    {next: []string{store.StageSelected}},

	{store.StageDiscovered, CommandStartOffer}: {next: []string{store.StageSelected}},

	{store.StageSelected, CommandConfirmSignup}:  {next: []string{store.StageSigningUp, store.StageAccountCreated}},
	{store.StageSigningUp, CommandConfirmSignup}: {next: []string{store.StageAccountCreated}},

	{store.StageAccountCreated, CommandStartQualifying}:     {next: []string{store.StageQualifyingPending}},
	{store.StageAccountCreated, commandSkipQualifying}:      {next: []string{store.StageFreeBetPending}},
	{store.StageAccountCreated, CommandRecordQualifyingBet}: {next: []string{store.StageQualifyingPlaced}, effects: effectLinkBet},
	{store.StageQualifyingPending, CommandRecordQualifyingBet}: {
		next:    []string{store.StageQualifyingPlaced},
		effects: effectLinkBet,
	},

	{store.StageQualifyingPlaced, CommandConfirmQualifyingOutcome}: {
		next:    []string{store.StageQualifyingSettled},
		effects: effectSettle | effectRefresh,
	},
	{store.StageQualifyingSettled, commandReleaseFreeBet}: {next: []string{store.StageFreeBetPending}},

	{store.StageFreeBetPending, CommandConfirmFreeBetReceived}: {next: []string{store.StageFreeBetAvailable}},
	{store.StageFreeBetAvailable, CommandRecordFreeBet}:        {next: []string{store.StageFreeBetPlaced}, effects: effectLinkBet},
	{store.StageFreeBetPlaced, CommandConfirmFreeBetOutcome}: {
		next:    []string{store.StageFreeBetSettled},
		effects: effectSettle | effectRefresh,
	},

	{store.StageFreeBetSettled, CommandComplete}: {next: []string{store.StageCompleted}, effects: effectRefresh},
}

func init() {
	for stage := range stageOrder {
		if stage == store.StageCompleted {
			continue
		}
		transitions[transitionKey{stage, CommandSkip}] = transition{next: []string{store.StageSkipped}, effects: effectRefresh}
		transitions[transitionKey{stage, CommandMarkExpired}] = transition{next: []string{store.StageExpired}, effects: effectRefresh}
		transitions[transitionKey{stage, CommandMarkFailed}] = transition{next: []string{store.StageFailed}, effects: effectRefresh}
	}
}

// lookup finds the transition for a command from a stage. When want is
// empty the first listed next stage is used.
func lookup(from string, cmd Command, want string) (string, transition, bool) {
	t, ok := transitions[transitionKey{from, cmd}]
	if !ok {
		return "", transition{}, false
	}
	if want == "" {
		return t.next[0], t, true
	}
	for _, n := range t.next {
		if n == want {
			return n, t, true
		}
	}
	return "", transition{}, false
}
