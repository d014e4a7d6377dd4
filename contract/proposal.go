package contract

import (
	"fmt"

	"vesta_dao/sdk"
)

// Proposal lifecycle: open -> election -> passed/failed, with expiry for
// proposals that never reach their support threshold. Elections are run by
// minting a single-use voting asset and counting the balances parked on the
// derived yes and no addresses.

func (m *machine) proposal(id uint64) (*Proposal, error) {
	raw := m.st.Get(proposalKey(id))
	if raw == nil {
		return nil, errf(ErrNotFound, "proposal %d", id)
	}
	return decodeProposal([]byte(*raw))
}

func (m *machine) saveProposal(p *Proposal) {
	m.st.Set(proposalKey(p.ID), string(encodeProposal(p)))
}

func (m *machine) supportOf(id uint64, h sdk.Address) Amount {
	return getAmount(m.st, supportKey(id, h))
}

func (m *machine) votingClaim(id uint64, h sdk.Address) *VotingClaim {
	raw := m.st.Get(votingClaimKey(id, h))
	if raw == nil {
		return nil
	}
	c, err := decodeVotingClaim([]byte(*raw))
	if err != nil {
		return nil
	}
	return c
}

func (m *machine) votingOpen(p *Proposal) bool {
	d, err := m.dao()
	if err != nil {
		return false
	}
	return m.env.Timestamp >= p.ElectionStart &&
		m.env.Timestamp < p.ElectionStart+d.Config.ElectionDuration
}

func (m *machine) voteCounts(p *Proposal) (yes, no Amount) {
	return m.balanceOf(p.YesAddress, p.VotingClass), m.balanceOf(p.NoAddress, p.VotingClass)
}

// nextVotingClass allocates a fresh, never-reused balance class for an
// election's voting asset and records which proposal owns it.
func (m *machine) nextVotingClass(proposalID uint64) ClassID {
	c := getCount(m.st, keyClassCount)
	if c < firstVotingClass {
		c = firstVotingClass
	}
	setCount(m.st, keyClassCount, c+1)
	m.st.Set(classOwnerKey(ClassID(c)), fmt.Sprintf("%d", proposalID))
	return ClassID(c)
}

// votingClassOwner resolves a class id to the proposal whose election it
// belongs to, nil for the governance, native and unallocated classes.
func (m *machine) votingClassOwner(class ClassID) (uint64, bool) {
	if uint64(class) < firstVotingClass {
		return 0, false
	}
	raw := m.st.Get(classOwnerKey(class))
	if raw == nil {
		return 0, false
	}
	return parseU64(*raw), true
}

// create runs the shared creation path. Proposal rights require a vested
// governance balance.
func (m *machine) create(p *Proposal) error {
	if _, err := m.dao(); err != nil {
		return err
	}
	if m.vestedBalance(m.env.Sender) <= 0 {
		return errf(ErrUnauthorized, "%s holds no vested governance tokens", m.env.Sender)
	}
	if p.Description == "" {
		return errf(ErrPolicy, "empty proposal description")
	}
	id := getCount(m.st, keyProposalCount)
	setCount(m.st, keyProposalCount, id+1)
	p.ID = id
	p.Proposer = m.env.Sender
	p.CreatedAt = m.env.Timestamp
	p.State = ProposalOpen
	p.Tx = m.env.TxID
	m.saveProposal(p)
	m.emit(EventProposalCreated, ProposalData{ID: p.ID, Kind: p.Kind, State: p.State})
	return nil
}

// NewProposal opens an ordinary (signal-only) proposal.
func (e *Engine) NewProposal(env sdk.Env, description string) (uint64, error) {
	p := &Proposal{Kind: KindOrdinary, Description: description}
	err := e.run(env, func(m *machine) error {
		return m.create(p)
	})
	return p.ID, err
}

// NewTreasuryProposal opens a proposal to pay tokens out of the treasury.
// The payout must fit the treasury's unreserved balance at creation time;
// the binding reservation happens at election trigger.
func (e *Engine) NewTreasuryProposal(env sdk.Env, description string, class ClassID, assetID uint64, amount Amount, recipient sdk.Address) (uint64, error) {
	p := &Proposal{
		Kind:         KindTreasury,
		Description:  description,
		AssetClass:   class,
		AssetID:      assetID,
		ActionAmount: amount,
		Recipient:    recipient,
	}
	err := e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		if amount <= 0 {
			return errf(ErrPolicy, "payout amount must be positive")
		}
		if !recipient.IsValid() || recipient.IsDerived() {
			return errf(ErrPolicy, "recipient %q not a user account", recipient)
		}
		if _, ok := m.votingClassOwner(class); ok {
			return errf(ErrPolicy, "class %d is an election voting asset", class)
		}
		if amount > m.availableBalance(d, class) {
			return errf(ErrInsufficientFunds, "treasury holds %d unlocked of class %d", m.availableBalance(d, class), class)
		}
		return m.create(p)
	})
	return p.ID, err
}

// NewDistributionProposal opens a proposal to distribute a treasury amount
// pro rata to registered vested holders.
func (e *Engine) NewDistributionProposal(env sdk.Env, description string, class ClassID, assetID uint64, amount Amount) (uint64, error) {
	p := &Proposal{
		Kind:         KindDistribution,
		Description:  description,
		AssetClass:   class,
		AssetID:      assetID,
		ActionAmount: amount,
	}
	err := e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		if amount <= 0 {
			return errf(ErrPolicy, "distribution amount must be positive")
		}
		if _, ok := m.votingClassOwner(class); ok {
			return errf(ErrPolicy, "class %d is an election voting asset", class)
		}
		supply := m.totalVestedSupply()
		if supply <= 0 {
			return errf(ErrPolicy, "no vested supply to distribute against")
		}
		if amount > m.availableBalance(d, class) {
			return errf(ErrInsufficientFunds, "treasury holds %d unlocked of class %d", m.availableBalance(d, class), class)
		}
		p.SupplyAtCreation = supply
		return m.create(p)
	})
	return p.ID, err
}

// NewParameterProposal opens a proposal to change one configuration
// parameter. The value is validated now and applied only if the proposal
// passes.
func (e *Engine) NewParameterProposal(env sdk.Env, description string, param Param, value int64) (uint64, error) {
	p := &Proposal{
		Kind:        KindParameter,
		Description: description,
		Param:       param,
		ParamValue:  value,
	}
	err := e.run(env, func(m *machine) error {
		if err := validateParamValue(param, value); err != nil {
			return err
		}
		return m.create(p)
	})
	return p.ID, err
}

// NewMintProposal opens a proposal to mint fresh governance tokens to a
// recipient. Requires the minting flag.
func (e *Engine) NewMintProposal(env sdk.Env, description string, amount Amount, recipient sdk.Address) (uint64, error) {
	p := &Proposal{
		Kind:         KindMint,
		Description:  description,
		ActionAmount: amount,
		Recipient:    recipient,
	}
	err := e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		if !d.Config.Flags.Has(FlagAllowMinting) {
			return errf(ErrPolicy, "minting disabled for this dao")
		}
		if amount <= 0 {
			return errf(ErrPolicy, "mint amount must be positive")
		}
		if !recipient.IsValid() || recipient.IsDerived() {
			return errf(ErrPolicy, "recipient %q not a user account", recipient)
		}
		return m.create(p)
	})
	return p.ID, err
}

// AddSupport pledges part of the sender's vested balance behind an open
// proposal. Crossing the support threshold triggers the election in the
// same transaction.
func (e *Engine) AddSupport(env sdk.Env, id uint64, amount Amount) error {
	return e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalOpen {
			return errf(ErrWrongState, "proposal %d is %s", id, p.State)
		}
		if m.env.Timestamp > p.CreatedAt+d.Config.MaxProposalAge {
			return errf(ErrOutsideWindow, "support window for proposal %d closed", id)
		}
		if amount <= 0 {
			return errf(ErrPolicy, "support amount must be positive")
		}
		m.purgeExpired(env.Sender)
		cur := m.supportOf(id, env.Sender)
		if cur+amount > m.vestedBalance(env.Sender) {
			return errf(ErrInsufficientVested, "%s has %d vested, pledging %d", env.Sender, m.vestedBalance(env.Sender), cur+amount)
		}
		setAmount(m.st, supportKey(id, env.Sender), cur+amount)
		m.addGovLock(env.Sender, amount)
		p.SupportTotal += amount
		m.emit(EventProposalSupported, SupportData{ID: id, Holder: env.Sender, Amount: amount, Total: p.SupportTotal})

		if meetsBps(p.SupportTotal, d.Config.SupportThresholdBps, m.totalVestedSupply()) {
			if err := m.triggerElection(d, p); err != nil {
				return err
			}
		}
		m.saveProposal(p)
		return nil
	})
}

// triggerElection freezes the snapshot, allocates the voting class, derives
// and registers the vote addresses, and reserves treasury funds for
// spending kinds.
func (m *machine) triggerElection(d *DAO, p *Proposal) error {
	p.State = ProposalElection
	p.ElectionStart = m.env.Timestamp
	p.SnapshotTotalVotes = m.totalVestedSupply()
	p.VotingClass = m.nextVotingClass(p.ID)
	p.YesAddress = m.deriveProposalAddress(d, p, "yes")
	p.NoAddress = m.deriveProposalAddress(d, p, "no")
	m.registerVoteAddr(p.YesAddress, p.ID, true)
	m.registerVoteAddr(p.NoAddress, p.ID, false)

	switch p.Kind {
	case KindTreasury, KindDistribution:
		if err := m.lockFunds(d, p); err != nil {
			return err
		}
	}
	if p.Kind == KindDistribution {
		if err := m.spawnDistribution(d, p); err != nil {
			return err
		}
	}
	m.saveDAO(d)
	m.emit(EventElectionTriggered, ElectionData{
		ID:          p.ID,
		VotingClass: p.VotingClass,
		YesAddress:  p.YesAddress,
		NoAddress:   p.NoAddress,
		Snapshot:    p.SnapshotTotalVotes,
	})
	return nil
}

// ClaimVotingTokens mints the sender's voting tokens for a live election,
// once. The amount is the vested balance as of election start, and the
// governance lock is topped up so support lock plus voting lock equals the
// claimed power.
func (e *Engine) ClaimVotingTokens(env sdk.Env, id uint64) (Amount, error) {
	var minted Amount
	err := e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "proposal %d is %s, not in election", id, p.State)
		}
		if !m.votingOpen(p) {
			return errf(ErrOutsideWindow, "voting window for proposal %d closed", id)
		}
		if m.votingClaim(id, env.Sender) != nil {
			return errf(ErrWrongState, "%s already claimed votes for proposal %d", env.Sender, id)
		}
		minted = m.vestedBalanceAsOf(env.Sender, p.ElectionStart)
		if minted <= 0 {
			return errf(ErrInsufficientVested, "%s had no vested balance at election start", env.Sender)
		}
		if err := m.mint(env.Sender, p.VotingClass, minted); err != nil {
			return err
		}
		lock := minted - m.supportOf(id, env.Sender)
		if lock < 0 {
			lock = 0
		}
		m.addGovLock(env.Sender, lock)
		m.st.Set(votingClaimKey(id, env.Sender), string(encodeVotingClaim(&VotingClaim{Minted: minted, Locked: lock})))
		m.emit(EventVotingClaimed, VotingClaimData{ID: id, Holder: env.Sender, Minted: minted, Locked: lock})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return minted, nil
}

// earlyTermination resolves a live election the moment either side holds an
// absolute majority of the frozen snapshot. No-op otherwise.
func (m *machine) earlyTermination(p *Proposal) error {
	if p.State != ProposalElection || p.SnapshotTotalVotes <= 0 {
		return nil
	}
	yes, no := m.voteCounts(p)
	majority := p.SnapshotTotalVotes/2 + 1
	switch {
	case yes >= majority:
		return m.resolve(p, true, true, yes, no)
	case no >= majority:
		return m.resolve(p, false, true, yes, no)
	}
	return nil
}

// CheckEarlyTermination runs the early-majority check on a live election.
// The transfer hook runs the same check after every vote, so this exists
// for callers reacting to external timing.
func (e *Engine) CheckEarlyTermination(env sdk.Env, id uint64) error {
	return e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "proposal %d is %s, not in election", id, p.State)
		}
		return m.earlyTermination(p)
	})
}

// Execute settles an election after its voting window closes: quorum plus
// a yes majority passes and performs the action, anything else fails the
// proposal and releases its reservation.
func (e *Engine) Execute(env sdk.Env, id uint64) error {
	return e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "proposal %d is %s, not in election", id, p.State)
		}
		if m.votingOpen(p) {
			return errf(ErrOutsideWindow, "voting window for proposal %d still open", id)
		}
		yes, no := m.voteCounts(p)
		passed := meetsBps(yes+no, d.Config.QuorumBps, p.SnapshotTotalVotes) && yes > no
		return m.resolve(p, passed, false, yes, no)
	})
}

// FailProposal settles a closed election as failed. Rejected when the
// outcome would pass, so nobody can bury a winning proposal.
func (e *Engine) FailProposal(env sdk.Env, id uint64) error {
	return e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "proposal %d is %s, not in election", id, p.State)
		}
		if m.votingOpen(p) {
			return errf(ErrOutsideWindow, "voting window for proposal %d still open", id)
		}
		yes, no := m.voteCounts(p)
		if meetsBps(yes+no, d.Config.QuorumBps, p.SnapshotTotalVotes) && yes > no {
			return errf(ErrWrongState, "proposal %d passes, call execute", id)
		}
		return m.resolve(p, false, false, yes, no)
	})
}

// ExpireProposal retires an open proposal that outlived its support window
// without triggering an election.
func (e *Engine) ExpireProposal(env sdk.Env, id uint64) error {
	return e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalOpen {
			return errf(ErrWrongState, "proposal %d is %s", id, p.State)
		}
		if m.env.Timestamp <= p.CreatedAt+d.Config.MaxProposalAge {
			return errf(ErrOutsideWindow, "proposal %d still within its support window", id)
		}
		p.State = ProposalExpired
		p.ResolvedAt = m.env.Timestamp
		m.saveProposal(p)
		m.emit(EventProposalExpired, ProposalData{ID: id, Kind: p.Kind, State: p.State})
		return nil
	})
}

// ReleaseProposalLocks returns the sender's support and voting locks for a
// settled proposal and burns any leftover voting tokens, which are
// worthless once the election is over.
func (e *Engine) ReleaseProposalLocks(env sdk.Env, id uint64) error {
	return e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if !p.State.Terminal() {
			stale := p.State == ProposalOpen && m.env.Timestamp > p.CreatedAt+d.Config.MaxProposalAge
			if !stale {
				return errf(ErrWrongState, "proposal %d not settled", id)
			}
		}
		total := m.supportOf(id, env.Sender)
		if claim := m.votingClaim(id, env.Sender); claim != nil {
			total += claim.Locked
		}
		if total > 0 {
			m.removeGovLock(env.Sender, total)
		}
		m.st.Delete(supportKey(id, env.Sender))
		m.st.Delete(votingClaimKey(id, env.Sender))
		if p.VotingClass >= ClassID(firstVotingClass) {
			if bal := m.balanceOf(env.Sender, p.VotingClass); bal > 0 {
				if err := m.burn(env.Sender, p.VotingClass, bal); err != nil {
					return err
				}
			}
		}
		m.emit(EventLocksReleased, LockReleaseData{ID: id, Holder: env.Sender, Amount: total})
		return nil
	})
}

// resolve settles an election and performs the action when it passed.
func (m *machine) resolve(p *Proposal, passed, early bool, yes, no Amount) error {
	d, err := m.dao()
	if err != nil {
		return err
	}
	if passed {
		if err := m.performAction(d, p); err != nil {
			return err
		}
		p.State = ProposalPassed
	} else {
		m.unlockFunds(p.ID)
		p.State = ProposalFailed
	}
	p.ResolvedAt = m.env.Timestamp
	p.EarlyResolved = early
	m.saveProposal(p)
	m.emit(EventProposalResolved, ResolutionData{ID: p.ID, Passed: passed, Early: early, Yes: yes, No: no})
	return nil
}

func (m *machine) performAction(d *DAO, p *Proposal) error {
	switch p.Kind {
	case KindTreasury:
		if err := m.transfer(d.Account, p.Recipient, p.AssetClass, p.ActionAmount); err != nil {
			return err
		}
		m.unlockFunds(p.ID)
	case KindDistribution:
		dist, err := m.distribution(p.ID)
		if err != nil {
			return err
		}
		if err := m.transfer(d.Account, dist.Account, p.AssetClass, p.ActionAmount); err != nil {
			return err
		}
		dist.Funded = true
		dist.PoolBalance = p.ActionAmount
		m.saveDistribution(dist)
		m.unlockFunds(p.ID)
		m.emit(EventDistFunded, DistFundedData{ID: p.ID, Account: dist.Account, Balance: dist.PoolBalance})
	case KindParameter:
		if err := m.applyParam(d, p.Param, p.ParamValue); err != nil {
			return err
		}
		m.saveDAO(d)
		m.emit(EventParameterChanged, ParameterData{ID: p.ID, Param: p.Param, Value: p.ParamValue})
	case KindMint:
		if err := m.mint(p.Recipient, GovernanceClass, p.ActionAmount); err != nil {
			return err
		}
		if err := m.addVestingSchedule(p.Recipient, p.ActionAmount); err != nil {
			return err
		}
	}
	return nil
}

func validateParamValue(param Param, value int64) error {
	switch param {
	case ParamSupportThreshold:
		if value < 0 || value > 10000 {
			return errf(ErrPolicy, "support threshold %d bps outside [0,10000]", value)
		}
	case ParamQuorum:
		if value < 100 || value > 10000 {
			return errf(ErrPolicy, "quorum %d bps outside [100,10000]", value)
		}
	case ParamMaxProposalAge, ParamElectionDuration:
		if value <= 0 {
			return errf(ErrPolicy, "%s must be positive", param)
		}
	case ParamVestingPeriod, ParamTokenSalePrice:
		if value < 0 {
			return errf(ErrPolicy, "%s must not be negative", param)
		}
	case ParamFlags:
		if value < 0 || value > 255 {
			return errf(ErrPolicy, "flags %d outside one byte", value)
		}
	default:
		return errf(ErrPolicy, "unknown parameter")
	}
	return nil
}

func (m *machine) applyParam(d *DAO, param Param, value int64) error {
	if err := validateParamValue(param, value); err != nil {
		return err
	}
	switch param {
	case ParamSupportThreshold:
		d.Config.SupportThresholdBps = uint32(value)
	case ParamQuorum:
		d.Config.QuorumBps = uint32(value)
	case ParamMaxProposalAge:
		d.Config.MaxProposalAge = value
	case ParamElectionDuration:
		d.Config.ElectionDuration = value
	case ParamVestingPeriod:
		d.Config.VestingPeriod = value
	case ParamTokenSalePrice:
		d.Config.TokenSalePrice = Amount(value)
	case ParamFlags:
		d.Config.Flags = Flags(value)
	}
	return nil
}
