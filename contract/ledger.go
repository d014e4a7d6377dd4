package contract

import (
	"fmt"

	"vesta_dao/sdk"
)

// Multi-class balance ledger. Every balance move funnels through
// machine.transfer so the vesting/lock guard and the vote-address hook see
// every governance movement without exception.

func (m *machine) balanceOf(holder sdk.Address, class ClassID) Amount {
	return getAmount(m.st, balanceKey(class, holder))
}

func (m *machine) totalSupply(class ClassID) Amount {
	return getAmount(m.st, supplyKey(class))
}

// setBalance writes a balance and keeps the governance holder index in sync
// on zero/nonzero transitions.
func (m *machine) setBalance(holder sdk.Address, class ClassID, v Amount) {
	prev := m.balanceOf(holder, class)
	setAmount(m.st, balanceKey(class, holder), v)
	if class != GovernanceClass {
		return
	}
	if prev == 0 && v > 0 {
		m.indexHolder(holder)
	} else if prev > 0 && v == 0 {
		m.unindexHolder(holder)
	}
}

func (m *machine) mint(to sdk.Address, class ClassID, amount Amount) error {
	if amount <= 0 {
		return errf(ErrPolicy, "mint amount must be positive")
	}
	m.setBalance(to, class, m.balanceOf(to, class)+amount)
	setAmount(m.st, supplyKey(class), m.totalSupply(class)+amount)
	if class == GovernanceClass {
		m.recordMint(to, amount)
	}
	return nil
}

func (m *machine) burn(from sdk.Address, class ClassID, amount Amount) error {
	if amount <= 0 {
		return errf(ErrPolicy, "burn amount must be positive")
	}
	bal := m.balanceOf(from, class)
	if bal < amount {
		return errf(ErrInsufficientBalance, "burn %d from %s holding %d", amount, from, bal)
	}
	m.setBalance(from, class, bal-amount)
	setAmount(m.st, supplyKey(class), m.totalSupply(class)-amount)
	return nil
}

// transfer moves tokens with full guard semantics. Governance transfers
// first purge expired vesting entries, then enforce the transferable bound.
// Transfers into a registered vote address are validated against the owning
// election and trigger an in-transaction early-termination check.
func (m *machine) transfer(from, to sdk.Address, class ClassID, amount Amount) error {
	if amount <= 0 {
		return errf(ErrPolicy, "transfer amount must be positive")
	}
	bal := m.balanceOf(from, class)
	if bal < amount {
		return errf(ErrInsufficientBalance, "transfer %d from %s holding %d", amount, from, bal)
	}
	if class == GovernanceClass {
		m.purgeExpired(from)
		if free := m.transferableBalance(from); amount > free {
			return errf(ErrLockedBalance, "transfer %d from %s with %d transferable", amount, from, free)
		}
	}

	// a voting asset circulates only while its election accepts votes
	if owner, ok := m.votingClassOwner(class); ok {
		p, err := m.proposal(owner)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "voting asset of proposal %d expired with the election", p.ID)
		}
		if !m.votingOpen(p) {
			return errf(ErrOutsideWindow, "voting window for proposal %d is closed", p.ID)
		}
	}

	var ref *VoteRef
	if to.Domain() == sdk.AddressDomainVote {
		ref = m.voteRef(to)
		if ref == nil {
			return errf(ErrPolicy, "unknown vote address %s", to)
		}
		p, err := m.proposal(ref.ProposalID)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "proposal %d is %s, not in election", p.ID, p.State)
		}
		if class != p.VotingClass {
			return errf(ErrPolicy, "vote on proposal %d needs class %d, got %d", p.ID, p.VotingClass, class)
		}
		if !m.votingOpen(p) {
			return errf(ErrOutsideWindow, "voting window for proposal %d is closed", p.ID)
		}
	}

	m.setBalance(from, class, m.balanceOf(from, class)-amount)
	m.setBalance(to, class, m.balanceOf(to, class)+amount)
	m.emit(EventTransfer, TransferData{From: from, To: to, Class: class, Amount: amount})

	if ref != nil {
		p, err := m.proposal(ref.ProposalID)
		if err != nil {
			return err
		}
		return m.earlyTermination(p)
	}
	return nil
}

// Transfer moves tokens out of the sender's balance. Casting a vote is a
// plain transfer of voting tokens to the election's yes or no address.
func (e *Engine) Transfer(env sdk.Env, to sdk.Address, class ClassID, amount Amount) error {
	return e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		if !to.IsValid() {
			return errf(ErrPolicy, "invalid recipient %q", to)
		}
		if env.Sender == to {
			return errf(ErrPolicy, "self transfer")
		}
		return m.transfer(env.Sender, to, class, amount)
	})
}

// governance holder index: append array plus position map, removal swaps
// the last entry into the vacated slot.

func (m *machine) holderPos(h sdk.Address) (uint64, bool) {
	raw := m.st.Get(holderPosKey(h))
	if raw == nil {
		return 0, false
	}
	var pos uint64
	if _, err := fmt.Sscanf(*raw, "%d", &pos); err != nil {
		return 0, false
	}
	return pos, true
}

func (m *machine) indexHolder(h sdk.Address) {
	if _, ok := m.holderPos(h); ok {
		return
	}
	cnt := getCount(m.st, holderCountKey())
	m.st.Set(holderArrKey(cnt), h.String())
	m.st.Set(holderPosKey(h), fmt.Sprintf("%d", cnt))
	setCount(m.st, holderCountKey(), cnt+1)
}

func (m *machine) unindexHolder(h sdk.Address) {
	pos, ok := m.holderPos(h)
	if !ok {
		return
	}
	cnt := getCount(m.st, holderCountKey())
	last := cnt - 1
	if pos != last {
		lastAddr := m.st.Get(holderArrKey(last))
		if lastAddr != nil {
			m.st.Set(holderArrKey(pos), *lastAddr)
			m.st.Set(holderPosKey(sdk.Address(*lastAddr)), fmt.Sprintf("%d", pos))
		}
	}
	m.st.Delete(holderArrKey(last))
	m.st.Delete(holderPosKey(h))
	setCount(m.st, holderCountKey(), cnt-1)
}

func (m *machine) holders() []sdk.Address {
	cnt := getCount(m.st, holderCountKey())
	out := make([]sdk.Address, 0, cnt)
	for i := uint64(0); i < cnt; i++ {
		raw := m.st.Get(holderArrKey(i))
		if raw != nil {
			out = append(out, sdk.Address(*raw))
		}
	}
	return out
}
