package contract

import "fmt"

// Fund-lock registry. Treasury-spending proposals reserve their payout at
// election trigger so two elections can never promise the same tokens. The
// registry is an append array plus a position map; removal swaps the last
// entry into the hole, so lock and unlock stay O(1) while the locked total
// stays iterable.

func (m *machine) lockedFunds(id uint64) *LockedFunds {
	raw := m.st.Get(fundLockKey(id))
	if raw == nil {
		return nil
	}
	l, err := decodeLockedFunds([]byte(*raw))
	if err != nil {
		return nil
	}
	return l
}

// lockFunds reserves the proposal's payout. At most one reservation per
// proposal, and only up to the treasury's unreserved balance.
func (m *machine) lockFunds(d *DAO, p *Proposal) error {
	if m.lockedFunds(p.ID) != nil {
		return errf(ErrWrongState, "funds for proposal %d already locked", p.ID)
	}
	avail := m.availableBalance(d, p.AssetClass)
	if p.ActionAmount > avail {
		return errf(ErrInsufficientFunds, "proposal %d needs %d of class %d, %d unlocked", p.ID, p.ActionAmount, p.AssetClass, avail)
	}
	l := &LockedFunds{
		ProposalID: p.ID,
		AssetClass: p.AssetClass,
		AssetID:    p.AssetID,
		Amount:     p.ActionAmount,
		LockedAt:   m.env.Timestamp,
	}
	m.st.Set(fundLockKey(p.ID), string(encodeLockedFunds(l)))
	cnt := getCount(m.st, keyFundLockCount)
	m.st.Set(fundArrKey(cnt), fmt.Sprintf("%d", p.ID))
	m.st.Set(fundPosKey(p.ID), fmt.Sprintf("%d", cnt))
	setCount(m.st, keyFundLockCount, cnt+1)
	m.emit(EventFundsLocked, FundLockData{ID: p.ID, Class: p.AssetClass, Amount: p.ActionAmount})
	return nil
}

// unlockFunds drops a proposal's reservation. No-op when none exists, so
// resolution paths can call it unconditionally.
func (m *machine) unlockFunds(id uint64) {
	l := m.lockedFunds(id)
	if l == nil {
		return
	}
	posRaw := m.st.Get(fundPosKey(id))
	if posRaw == nil {
		return
	}
	var pos uint64
	if _, err := fmt.Sscanf(*posRaw, "%d", &pos); err != nil {
		return
	}
	cnt := getCount(m.st, keyFundLockCount)
	last := cnt - 1
	if pos != last {
		lastID := m.st.Get(fundArrKey(last))
		if lastID != nil {
			m.st.Set(fundArrKey(pos), *lastID)
			m.st.Set(fundPosKey(parseU64(*lastID)), fmt.Sprintf("%d", pos))
		}
	}
	m.st.Delete(fundArrKey(last))
	m.st.Delete(fundPosKey(id))
	m.st.Delete(fundLockKey(id))
	setCount(m.st, keyFundLockCount, cnt-1)
	m.emit(EventFundsUnlocked, FundLockData{ID: id, Class: l.AssetClass, Amount: l.Amount})
}

func parseU64(s string) uint64 {
	var v uint64
	fmt.Sscanf(s, "%d", &v)
	return v
}

func (m *machine) allLockedFunds() []*LockedFunds {
	cnt := getCount(m.st, keyFundLockCount)
	out := make([]*LockedFunds, 0, cnt)
	for i := uint64(0); i < cnt; i++ {
		idRaw := m.st.Get(fundArrKey(i))
		if idRaw == nil {
			continue
		}
		if l := m.lockedFunds(parseU64(*idRaw)); l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (m *machine) lockedTotal(class ClassID) Amount {
	var sum Amount
	for _, l := range m.allLockedFunds() {
		if l.AssetClass == class {
			sum += l.Amount
		}
	}
	return sum
}

// availableBalance is the treasury balance of a class minus all live
// reservations against it.
func (m *machine) availableBalance(d *DAO, class ClassID) Amount {
	v := m.balanceOf(d.Account, class) - m.lockedTotal(class)
	if v < 0 {
		v = 0
	}
	return v
}
