package contract

import "vesta_dao/sdk"

// Per-holder lock counters. The governance lock aggregates support locks
// and voting-claim locks across all live proposals; the distribution lock
// aggregates registered shares. Both only ever bound transfers, they never
// move tokens.

func (m *machine) govLockOf(h sdk.Address) Amount {
	return getAmount(m.st, govLockKey(h))
}

func (m *machine) distLockOf(h sdk.Address) Amount {
	return getAmount(m.st, distLockKey(h))
}

func (m *machine) adjustLock(key string, delta Amount) {
	v := getAmount(m.st, key) + delta
	if v < 0 {
		v = 0
	}
	setAmount(m.st, key, v)
}

func (m *machine) addGovLock(h sdk.Address, amt Amount) {
	m.adjustLock(govLockKey(h), amt)
}

func (m *machine) removeGovLock(h sdk.Address, amt Amount) {
	m.adjustLock(govLockKey(h), -amt)
}

func (m *machine) addDistLock(h sdk.Address, amt Amount) {
	m.adjustLock(distLockKey(h), amt)
}

func (m *machine) removeDistLock(h sdk.Address, amt Amount) {
	m.adjustLock(distLockKey(h), -amt)
}

// transferableBalance is the governance balance minus unvested schedules
// and both lock counters, floored at zero.
func (m *machine) transferableBalance(h sdk.Address) Amount {
	free := m.balanceOf(h, GovernanceClass) -
		m.unvestedOf(h, m.env.Timestamp) -
		m.govLockOf(h) -
		m.distLockOf(h)
	if free < 0 {
		free = 0
	}
	return free
}
