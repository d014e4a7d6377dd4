package contract

import "vesta_dao/sdk"

// Amount is a token quantity in base units. All ledger math is integer.
type Amount int64

// ClassID identifies a balance class on the asset ledger. Class 0 is the
// governance asset, class 1 the native payment asset, and every election
// allocates a fresh class id for its single-use voting asset.
type ClassID uint64

const (
	GovernanceClass ClassID = 0
	NativeClass     ClassID = 1

	// firstVotingClass is where the election class allocator starts.
	firstVotingClass uint64 = 2
)

// Flags is the behavioral flag bitset configured at DAO creation.
type Flags uint8

const (
	// FlagAllowMinting permits mint-type proposals.
	FlagAllowMinting Flags = 1 << iota
	// FlagHoldersOnlyPurchase restricts token-sale purchases to addresses
	// already holding the governance asset.
	FlagHoldersOnlyPurchase
	// FlagMintOnPurchase mints fresh tokens on purchase instead of selling
	// out of the treasury's own governance balance.
	FlagMintOnPurchase
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Config holds the DAO parameters fixed at creation and mutable only via a
// passed parameter-change proposal. Thresholds are basis points, durations
// unix seconds.
type Config struct {
	SupportThresholdBps uint32
	QuorumBps           uint32
	MaxProposalAge      int64
	ElectionDuration    int64
	VestingPeriod       int64  // 0 disables vesting entirely
	TokenSalePrice      Amount // native units per governance token, 0 disables
	Flags               Flags
	MaxVestingEntries   uint32
}

// DAO is the singleton root record for a deployed governance instance.
type DAO struct {
	Creator   sdk.Address
	Account   sdk.Address // derived treasury account
	CreatedAt int64
	Config    Config
	DeriveSeq uint64 // monotonic entropy counter for address derivation
	Tx        string
}

// ProposalKind selects the action a passed proposal performs.
type ProposalKind uint8

const (
	KindUnspecified  ProposalKind = 0
	KindOrdinary     ProposalKind = 1
	KindTreasury     ProposalKind = 2
	KindDistribution ProposalKind = 3
	KindParameter    ProposalKind = 4
	KindMint         ProposalKind = 5
)

// String prints the kind as lower-case text for events and payloads.
func (k ProposalKind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindTreasury:
		return "treasury"
	case KindDistribution:
		return "distribution"
	case KindParameter:
		return "parameter"
	case KindMint:
		return "mint"
	default:
		return "unspecified"
	}
}

// ProposalKindFromString is the payload-side inverse of String.
func ProposalKindFromString(s string) ProposalKind {
	switch s {
	case "ordinary":
		return KindOrdinary
	case "treasury":
		return KindTreasury
	case "distribution":
		return KindDistribution
	case "parameter":
		return KindParameter
	case "mint":
		return KindMint
	default:
		return KindUnspecified
	}
}

// ProposalState captures a proposal's lifecycle.
type ProposalState uint8

const (
	ProposalStateUnspecified ProposalState = 0
	ProposalOpen             ProposalState = 1
	ProposalElection         ProposalState = 2
	ProposalPassed           ProposalState = 3
	ProposalFailed           ProposalState = 4
	ProposalExpired          ProposalState = 5
)

// String prints the proposal state as lower-case text for events and logs.
func (ps ProposalState) String() string {
	switch ps {
	case ProposalOpen:
		return "open"
	case ProposalElection:
		return "election"
	case ProposalPassed:
		return "passed"
	case ProposalFailed:
		return "failed"
	case ProposalExpired:
		return "expired"
	default:
		return "unspecified"
	}
}

// Terminal reports whether the state is a resolution.
func (ps ProposalState) Terminal() bool {
	return ps == ProposalPassed || ps == ProposalFailed || ps == ProposalExpired
}

// Param identifies a configuration parameter targeted by a parameter-change
// proposal.
type Param uint8

const (
	ParamUnspecified      Param = 0
	ParamSupportThreshold Param = 1
	ParamQuorum           Param = 2
	ParamMaxProposalAge   Param = 3
	ParamElectionDuration Param = 4
	ParamVestingPeriod    Param = 5
	ParamTokenSalePrice   Param = 6
	ParamFlags            Param = 7
)

func (p Param) String() string {
	switch p {
	case ParamSupportThreshold:
		return "support_threshold"
	case ParamQuorum:
		return "quorum"
	case ParamMaxProposalAge:
		return "max_proposal_age"
	case ParamElectionDuration:
		return "election_duration"
	case ParamVestingPeriod:
		return "vesting_period"
	case ParamTokenSalePrice:
		return "token_sale_price"
	case ParamFlags:
		return "flags"
	default:
		return "unspecified"
	}
}

// ParamFromString is the payload-side inverse of String.
func ParamFromString(s string) Param {
	switch s {
	case "support_threshold":
		return ParamSupportThreshold
	case "quorum":
		return ParamQuorum
	case "max_proposal_age":
		return ParamMaxProposalAge
	case "election_duration":
		return ParamElectionDuration
	case "vesting_period":
		return ParamVestingPeriod
	case "token_sale_price":
		return ParamTokenSalePrice
	case "flags":
		return ParamFlags
	default:
		return ParamUnspecified
	}
}

// Proposal - stored at kProposal|id. Kind-specific action fields are zero
// for kinds that do not use them.
type Proposal struct {
	ID          uint64
	Kind        ProposalKind
	Proposer    sdk.Address
	Description string
	CreatedAt   int64
	State       ProposalState

	SupportTotal Amount

	// election data, populated at trigger time
	ElectionStart      int64
	VotingClass        ClassID
	YesAddress         sdk.Address
	NoAddress          sdk.Address
	SnapshotTotalVotes Amount

	ResolvedAt    int64
	EarlyResolved bool

	// action payload
	AssetClass       ClassID
	AssetID          uint64
	ActionAmount     Amount
	Recipient        sdk.Address
	Param            Param
	ParamValue       int64
	SupplyAtCreation Amount // distribution target denominator

	Tx string
}

// MintRecord is one recent governance inflow. The log screens voting-token
// claims so tokens minted after an election's snapshot carry no power in it;
// entries older than every possible live voting window are pruned.
type MintRecord struct {
	Amount Amount
	At     int64
}

// VestingSchedule is one time-locked slice of a holder's governance balance.
// Schedules sharing an unlock time are merged on write.
type VestingSchedule struct {
	Amount Amount
	Unlock int64
}

// LockedFunds records a treasury reservation held by one in-flight proposal.
type LockedFunds struct {
	ProposalID uint64
	AssetClass ClassID
	AssetID    uint64
	Amount     Amount
	LockedAt   int64
}

// Distribution is the redemption satellite spawned by a distribution-type
// proposal at election trigger.
type Distribution struct {
	ProposalID       uint64
	AssetClass       ClassID
	AssetID          uint64
	Account          sdk.Address // derived pool account
	PoolTarget       Amount
	SupplyAtCreation Amount
	TotalShares      Amount
	PoolBalance      Amount
	Funded           bool
}

// DistributionEntry is one holder's registration against a distribution.
type DistributionEntry struct {
	Shares  Amount
	Claimed bool
}

// VotingClaim records a holder's one-shot voting-token claim for an
// election. Locked is the governance-lock top-up beyond the holder's
// support lock on the same proposal.
type VotingClaim struct {
	Minted Amount
	Locked Amount
}

// VoteRef is the reverse-map entry from a derived vote address back to its
// election.
type VoteRef struct {
	ProposalID uint64
	Yes        bool
}
