package contract

import (
	"sort"

	"vesta_dao/sdk"
)

// Vesting ledger. Every governance inflow (genesis, deposit, purchase,
// mint proposal) gets a time lock of the configured vesting period. A
// holder's voting power is exactly the vested part of their balance.

func (m *machine) schedules(h sdk.Address) []VestingSchedule {
	raw := m.st.Get(vestingKey(h))
	if raw == nil {
		return nil
	}
	s, err := decodeSchedules([]byte(*raw))
	if err != nil {
		return nil
	}
	return s
}

func (m *machine) saveSchedules(h sdk.Address, s []VestingSchedule) {
	if len(s) == 0 {
		m.st.Delete(vestingKey(h))
		return
	}
	m.st.Set(vestingKey(h), string(encodeSchedules(s)))
}

// addVestingSchedule time-locks a fresh governance inflow. Entries sharing
// an unlock second merge, the list stays sorted by unlock time, and the
// per-holder entry count is bounded.
func (m *machine) addVestingSchedule(h sdk.Address, amount Amount) error {
	d, err := m.dao()
	if err != nil {
		return err
	}
	if d.Config.VestingPeriod == 0 {
		return nil
	}
	unlock := m.env.Timestamp + d.Config.VestingPeriod
	s := m.schedules(h)
	idx := sort.Search(len(s), func(i int) bool { return s[i].Unlock >= unlock })
	if idx < len(s) && s[idx].Unlock == unlock {
		s[idx].Amount += amount
	} else {
		if uint32(len(s)) >= d.Config.MaxVestingEntries {
			return errf(ErrPolicy, "vesting schedule for %s full at %d entries", h, len(s))
		}
		s = append(s, VestingSchedule{})
		copy(s[idx+1:], s[idx:])
		s[idx] = VestingSchedule{Amount: amount, Unlock: unlock}
	}
	m.saveSchedules(h, s)
	setAmount(m.st, keyUnvested, getAmount(m.st, keyUnvested)+amount)
	return nil
}

// unvestedOf sums the holder's schedule entries still locked as of the
// given time.
func (m *machine) unvestedOf(h sdk.Address, asOf int64) Amount {
	var sum Amount
	for _, e := range m.schedules(h) {
		if e.Unlock > asOf {
			sum += e.Amount
		}
	}
	return sum
}

func (m *machine) mintLog(h sdk.Address) []MintRecord {
	raw := m.st.Get(mintLogKey(h))
	if raw == nil {
		return nil
	}
	log, err := decodeMintLog([]byte(*raw))
	if err != nil {
		return nil
	}
	return log
}

// recordMint appends a governance inflow to the holder's recent-mint log.
// A live election can only have started within the last election duration,
// so older entries cannot screen any claim and are dropped on the way in.
func (m *machine) recordMint(h sdk.Address, amount Amount) {
	d, err := m.dao()
	if err != nil {
		return
	}
	log := m.mintLog(h)
	kept := log[:0]
	for _, e := range log {
		if e.At+d.Config.ElectionDuration > m.env.Timestamp {
			kept = append(kept, e)
		}
	}
	if n := len(kept); n > 0 && kept[n-1].At == m.env.Timestamp {
		kept[n-1].Amount += amount
	} else {
		kept = append(kept, MintRecord{Amount: amount, At: m.env.Timestamp})
	}
	m.st.Set(mintLogKey(h), string(encodeMintLog(kept)))
}

// mintedAfter sums the holder's governance inflows minted strictly after the
// given time.
func (m *machine) mintedAfter(h sdk.Address, asOf int64) Amount {
	var sum Amount
	for _, e := range m.mintLog(h) {
		if e.At > asOf {
			sum += e.Amount
		}
	}
	return sum
}

// vestedBalanceAsOf is the holder's voting power for an election that
// started at asOf: the current balance less entries still locked then and
// less anything minted to the holder since. Only transfers move power into
// an already-frozen snapshot.
func (m *machine) vestedBalanceAsOf(h sdk.Address, asOf int64) Amount {
	v := m.balanceOf(h, GovernanceClass) - m.unvestedOf(h, asOf) - m.mintedAfter(h, asOf)
	if v < 0 {
		v = 0
	}
	return v
}

func (m *machine) vestedBalance(h sdk.Address) Amount {
	return m.vestedBalanceAsOf(h, m.env.Timestamp)
}

// purgeExpired drops schedule entries whose unlock time has passed and
// returns the amount that became vested. The global unvested counter moves
// only here and in addVestingSchedule.
func (m *machine) purgeExpired(h sdk.Address) Amount {
	s := m.schedules(h)
	if len(s) == 0 {
		return 0
	}
	var freed Amount
	kept := s[:0]
	for _, e := range s {
		if e.Unlock <= m.env.Timestamp {
			freed += e.Amount
		} else {
			kept = append(kept, e)
		}
	}
	if freed == 0 {
		return 0
	}
	m.saveSchedules(h, kept)
	setAmount(m.st, keyUnvested, getAmount(m.st, keyUnvested)-freed)
	return freed
}

// totalVestedSupply derives the DAO-wide voting power base from the supply
// and the running unvested counter. The counter is a lower bound until
// holders purge, which keeps threshold checks conservative.
func (m *machine) totalVestedSupply() Amount {
	v := m.totalSupply(GovernanceClass) - getAmount(m.st, keyUnvested)
	if v < 0 {
		v = 0
	}
	return v
}

// Purchase buys governance tokens at the configured sale price, paying in
// the native asset. Depending on flags the tokens are minted fresh or sold
// out of the treasury's unlocked governance balance. Purchases vest.
func (e *Engine) Purchase(env sdk.Env, spend Amount) (Amount, error) {
	var tokens Amount
	err := e.run(env, func(m *machine) error {
		d, err := m.dao()
		if err != nil {
			return err
		}
		cfg := d.Config
		if cfg.TokenSalePrice <= 0 {
			return errf(ErrPolicy, "token sale disabled")
		}
		if spend <= 0 || spend%cfg.TokenSalePrice != 0 {
			return errf(ErrPolicy, "spend %d not a positive multiple of sale price %d", spend, cfg.TokenSalePrice)
		}
		if cfg.Flags.Has(FlagHoldersOnlyPurchase) && m.balanceOf(env.Sender, GovernanceClass) == 0 {
			return errf(ErrUnauthorized, "purchases restricted to existing holders")
		}
		tokens = spend / cfg.TokenSalePrice
		if err := m.transfer(env.Sender, d.Account, NativeClass, spend); err != nil {
			return err
		}
		minted := cfg.Flags.Has(FlagMintOnPurchase)
		if minted {
			if err := m.mint(env.Sender, GovernanceClass, tokens); err != nil {
				return err
			}
		} else {
			if tokens > m.availableBalance(d, GovernanceClass) {
				return errf(ErrInsufficientFunds, "treasury cannot cover sale of %d tokens", tokens)
			}
			if err := m.transfer(d.Account, env.Sender, GovernanceClass, tokens); err != nil {
				return err
			}
		}
		if err := m.addVestingSchedule(env.Sender, tokens); err != nil {
			return err
		}
		m.emit(EventPurchase, PurchaseData{
			Buyer:  env.Sender,
			Spent:  spend,
			Tokens: tokens,
			Minted: minted,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tokens, nil
}

// ClaimVestedTokens purges the sender's expired schedule entries and
// reports how much became spendable. Transfers purge lazily anyway, so
// calling this is an optimization, not a requirement.
func (e *Engine) ClaimVestedTokens(env sdk.Env) (Amount, error) {
	var freed Amount
	err := e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		freed = m.purgeExpired(env.Sender)
		if freed > 0 {
			m.emit(EventVested, VestedData{Holder: env.Sender, Amount: freed})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return freed, nil
}
