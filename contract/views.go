package contract

import "vesta_dao/sdk"

// Read-only views over committed state. Views never mutate and never run
// through the transaction machinery.

// GetDAO returns the DAO record, or ErrNotFound before creation.
func (e *Engine) GetDAO() (*DAO, error) {
	return e.reader().dao()
}

// GetProposal returns a proposal by id.
func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	return e.reader().proposal(id)
}

// GetDistribution returns the distribution satellite for a proposal.
func (e *Engine) GetDistribution(id uint64) (*Distribution, error) {
	return e.reader().distribution(id)
}

// ProposalCount returns how many proposals were ever created.
func (e *Engine) ProposalCount() uint64 {
	return getCount(e.state, keyProposalCount)
}

// BalanceOf returns a holder's balance in a class.
func (e *Engine) BalanceOf(holder sdk.Address, class ClassID) Amount {
	return e.reader().balanceOf(holder, class)
}

// TotalSupply returns a class's total supply.
func (e *Engine) TotalSupply(class ClassID) Amount {
	return e.reader().totalSupply(class)
}

// VestedBalance returns the holder's vested governance balance at a time.
func (e *Engine) VestedBalance(holder sdk.Address, at int64) Amount {
	return e.reader().vestedBalanceAsOf(holder, at)
}

// TransferableBalance returns what the holder could move at a time, after
// vesting and both lock counters.
func (e *Engine) TransferableBalance(holder sdk.Address, at int64) Amount {
	m := e.reader()
	m.env.Timestamp = at
	return m.transferableBalance(holder)
}

// TotalVestedSupply returns the DAO-wide voting power base.
func (e *Engine) TotalVestedSupply() Amount {
	return e.reader().totalVestedSupply()
}

// GovernanceLockOf returns the holder's aggregate support and voting lock.
func (e *Engine) GovernanceLockOf(holder sdk.Address) Amount {
	return e.reader().govLockOf(holder)
}

// DistributionLockOf returns the holder's aggregate registered shares.
func (e *Engine) DistributionLockOf(holder sdk.Address) Amount {
	return e.reader().distLockOf(holder)
}

// SupportOf returns the holder's pledge on a proposal.
func (e *Engine) SupportOf(id uint64, holder sdk.Address) Amount {
	return e.reader().supportOf(id, holder)
}

// VestingSchedulesOf returns the holder's remaining schedule entries.
func (e *Engine) VestingSchedulesOf(holder sdk.Address) []VestingSchedule {
	return e.reader().schedules(holder)
}

// GovernanceHolders returns every address with a nonzero governance
// balance, in index order.
func (e *Engine) GovernanceHolders() []sdk.Address {
	return e.reader().holders()
}

// LockedFundsOf returns the treasury reservation held by a proposal, nil
// when none.
func (e *Engine) LockedFundsOf(id uint64) *LockedFunds {
	return e.reader().lockedFunds(id)
}

// AvailableTreasury returns the treasury balance of a class minus live
// reservations.
func (e *Engine) AvailableTreasury(class ClassID) (Amount, error) {
	m := e.reader()
	d, err := m.dao()
	if err != nil {
		return 0, err
	}
	return m.availableBalance(d, class), nil
}

// VoteAddressFor resolves a derived vote address back to its election.
func (e *Engine) VoteAddressFor(addr sdk.Address) *VoteRef {
	return e.reader().voteRef(addr)
}
