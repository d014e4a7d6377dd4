package contract

import (
	"vesta_dao/event"
	"vesta_dao/sdk"
)

// Event streams published by the engine. One event per state transition the
// outside world can react to; payloads carry the facts, not the state.
const (
	EventDAOCreated          event.Type = "dao.created"
	EventDeposit             event.Type = "ledger.deposit"
	EventTransfer            event.Type = "ledger.transfer"
	EventPurchase            event.Type = "token.purchase"
	EventVested              event.Type = "vesting.claimed"
	EventProposalCreated     event.Type = "proposal.created"
	EventProposalSupported   event.Type = "proposal.supported"
	EventElectionTriggered   event.Type = "proposal.election"
	EventVotingClaimed       event.Type = "proposal.votes_claimed"
	EventProposalResolved    event.Type = "proposal.resolved"
	EventProposalExpired     event.Type = "proposal.expired"
	EventLocksReleased       event.Type = "proposal.locks_released"
	EventFundsLocked         event.Type = "treasury.funds_locked"
	EventFundsUnlocked       event.Type = "treasury.funds_unlocked"
	EventDistRegistered      event.Type = "distribution.registered"
	EventDistFunded          event.Type = "distribution.funded"
	EventDistClaimed         event.Type = "distribution.claimed"
	EventDistLockReleased    event.Type = "distribution.lock_released"
	EventParameterChanged    event.Type = "config.parameter_changed"
)

type DAOCreatedData struct {
	Creator sdk.Address
	Account sdk.Address
	Holders uint32
}

type TransferData struct {
	From   sdk.Address
	To     sdk.Address
	Class  ClassID
	Amount Amount
}

type PurchaseData struct {
	Buyer  sdk.Address
	Spent  Amount
	Tokens Amount
	Minted bool
}

type VestedData struct {
	Holder sdk.Address
	Amount Amount
}

type ProposalData struct {
	ID    uint64
	Kind  ProposalKind
	State ProposalState
}

type SupportData struct {
	ID      uint64
	Holder  sdk.Address
	Amount  Amount
	Total   Amount
}

type ElectionData struct {
	ID          uint64
	VotingClass ClassID
	YesAddress  sdk.Address
	NoAddress   sdk.Address
	Snapshot    Amount
}

type VotingClaimData struct {
	ID     uint64
	Holder sdk.Address
	Minted Amount
	Locked Amount
}

type ResolutionData struct {
	ID     uint64
	Passed bool
	Early  bool
	Yes    Amount
	No     Amount
}

type LockReleaseData struct {
	ID     uint64
	Holder sdk.Address
	Amount Amount
}

type FundLockData struct {
	ID     uint64
	Class  ClassID
	Amount Amount
}

type DistRegistrationData struct {
	ID     uint64
	Holder sdk.Address
	Shares Amount
}

type DistFundedData struct {
	ID      uint64
	Account sdk.Address
	Balance Amount
}

type DistClaimData struct {
	ID     uint64
	Holder sdk.Address
	Payout Amount
}

type ParameterData struct {
	ID    uint64
	Param Param
	Value int64
}
