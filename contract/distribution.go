package contract

import "vesta_dao/sdk"

// Pro-rata distributions. A distribution proposal spawns a pool satellite
// at election trigger; vested holders register shares during the election,
// and once the passed proposal funds the pool every registrant redeems
// shares/totalShares of the actual pool balance.

func (m *machine) distribution(id uint64) (*Distribution, error) {
	raw := m.st.Get(distributionKey(id))
	if raw == nil {
		return nil, errf(ErrNotFound, "distribution for proposal %d", id)
	}
	return decodeDistribution([]byte(*raw))
}

func (m *machine) saveDistribution(d *Distribution) {
	m.st.Set(distributionKey(d.ProposalID), string(encodeDistribution(d)))
}

func (m *machine) distEntry(id uint64, h sdk.Address) *DistributionEntry {
	raw := m.st.Get(distEntryKey(id, h))
	if raw == nil {
		return nil
	}
	e, err := decodeDistEntry([]byte(*raw))
	if err != nil {
		return nil
	}
	return e
}

func (m *machine) saveDistEntry(id uint64, h sdk.Address, e *DistributionEntry) {
	m.st.Set(distEntryKey(id, h), string(encodeDistEntry(e)))
}

// spawnDistribution creates the pool satellite when the owning proposal's
// election triggers.
func (m *machine) spawnDistribution(d *DAO, p *Proposal) error {
	dist := &Distribution{
		ProposalID:       p.ID,
		AssetClass:       p.AssetClass,
		AssetID:          p.AssetID,
		Account:          m.deriveProposalAddress(d, p, "pool"),
		PoolTarget:       p.ActionAmount,
		SupplyAtCreation: p.SupplyAtCreation,
	}
	m.saveDistribution(dist)
	return nil
}

// RegisterForDistribution enters the sender into a distribution while its
// proposal is in election. Shares equal the sender's vested balance right
// now, and the same amount is locked under the distribution lock.
func (e *Engine) RegisterForDistribution(env sdk.Env, id uint64) (Amount, error) {
	var shares Amount
	err := e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		dist, err := m.distribution(id)
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if p.State != ProposalElection {
			return errf(ErrWrongState, "proposal %d is %s, registration needs a live election", id, p.State)
		}
		if m.distEntry(id, env.Sender) != nil {
			return errf(ErrWrongState, "%s already registered for distribution %d", env.Sender, id)
		}
		m.purgeExpired(env.Sender)
		shares = m.vestedBalance(env.Sender)
		if shares <= 0 {
			return errf(ErrInsufficientVested, "%s holds no vested balance", env.Sender)
		}
		m.addDistLock(env.Sender, shares)
		dist.TotalShares += shares
		m.saveDistribution(dist)
		m.saveDistEntry(id, env.Sender, &DistributionEntry{Shares: shares})
		m.emit(EventDistRegistered, DistRegistrationData{ID: id, Holder: env.Sender, Shares: shares})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return shares, nil
}

// ClaimDistribution pays the sender their pro-rata slice of a funded pool
// and releases their distribution lock. One claim per registrant.
func (e *Engine) ClaimDistribution(env sdk.Env, id uint64) (Amount, error) {
	var payout Amount
	err := e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		dist, err := m.distribution(id)
		if err != nil {
			return err
		}
		if !dist.Funded {
			return errf(ErrWrongState, "distribution %d not funded", id)
		}
		entry := m.distEntry(id, env.Sender)
		if entry == nil {
			return errf(ErrNotFound, "%s not registered for distribution %d", env.Sender, id)
		}
		if entry.Claimed {
			return errf(ErrWrongState, "%s already claimed distribution %d", env.Sender, id)
		}
		payout = mulDiv(entry.Shares, dist.PoolBalance, dist.TotalShares)
		if payout > 0 {
			if err := m.transfer(dist.Account, env.Sender, dist.AssetClass, payout); err != nil {
				return err
			}
		}
		m.removeDistLock(env.Sender, entry.Shares)
		entry.Claimed = true
		m.saveDistEntry(id, env.Sender, entry)
		m.emit(EventDistClaimed, DistClaimData{ID: id, Holder: env.Sender, Payout: payout})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return payout, nil
}

// ReleaseDistributionLock frees the sender's registered shares once the
// owning proposal settled. If the pool never funded, the shares also leave
// the distribution's denominator so they cannot dilute anyone.
func (e *Engine) ReleaseDistributionLock(env sdk.Env, id uint64) error {
	return e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		dist, err := m.distribution(id)
		if err != nil {
			return err
		}
		p, err := m.proposal(id)
		if err != nil {
			return err
		}
		if !p.State.Terminal() {
			return errf(ErrWrongState, "proposal %d not settled", id)
		}
		entry := m.distEntry(id, env.Sender)
		if entry == nil {
			return errf(ErrNotFound, "%s not registered for distribution %d", env.Sender, id)
		}
		if entry.Claimed {
			return errf(ErrWrongState, "%s already claimed distribution %d", env.Sender, id)
		}
		m.removeDistLock(env.Sender, entry.Shares)
		if !dist.Funded {
			dist.TotalShares -= entry.Shares
			m.saveDistribution(dist)
		}
		m.st.Delete(distEntryKey(id, env.Sender))
		m.emit(EventDistLockReleased, LockReleaseData{ID: id, Holder: env.Sender, Amount: entry.Shares})
		return nil
	})
}
