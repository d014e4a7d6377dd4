package contract

import (
	"sort"

	"vesta_dao/event"
	"vesta_dao/sdk"
)

// Engine is the governance state machine. It owns a flat key/value state and
// exposes one method per caller-visible operation. Execution is strictly
// single-threaded: the host serializes calls, and the busy flag rejects any
// re-entrant call that sneaks through a transfer hook.
type Engine struct {
	state sdk.State
	bus   *event.Bus
	busy  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithBus attaches an event bus; state transitions are published to it after
// each successful call.
func WithBus(b *event.Bus) Option {
	return func(e *Engine) {
		e.bus = b
	}
}

// New wraps the given state. The state may be empty (pre-genesis) or carry a
// previously committed engine state.
func New(state sdk.State, opts ...Option) *Engine {
	e := &Engine{state: state}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// machine is the per-call execution context: the transactional state
// overlay, the call env, and events staged for publication on commit.
type machine struct {
	st     sdk.State
	env    sdk.Env
	staged []event.Event

	cachedDAO *DAO
}

func (m *machine) emit(t event.Type, data any) {
	m.staged = append(m.staged, event.New(t, data))
}

// dao loads the singleton DAO record, caching it for the rest of the call.
func (m *machine) dao() (*DAO, error) {
	if m.cachedDAO != nil {
		return m.cachedDAO, nil
	}
	raw := m.st.Get(daoKey())
	if raw == nil {
		return nil, errf(ErrNotFound, "dao not created")
	}
	d, err := decodeDAO([]byte(*raw))
	if err != nil {
		return nil, err
	}
	m.cachedDAO = d
	return d, nil
}

func (m *machine) saveDAO(d *DAO) {
	m.st.Set(daoKey(), string(encodeDAO(d)))
	m.cachedDAO = d
}

// run executes fn inside a transaction. On error nothing is written and no
// event leaves the machine; on success the write set commits and staged
// events publish in order.
func (e *Engine) run(env sdk.Env, fn func(*machine) error) error {
	if e.busy {
		return ErrReentrancy
	}
	e.busy = true
	defer func() { e.busy = false }()

	tx := newTxState(e.state)
	m := &machine{st: tx, env: env}
	if err := fn(m); err != nil {
		return err
	}
	tx.commit()
	if e.bus != nil {
		for _, evt := range m.staged {
			e.bus.Publish(evt)
		}
	}
	return nil
}

// reader builds a read-only machine over the committed state for views.
func (e *Engine) reader() *machine {
	return &machine{st: e.state}
}

func validateConfig(cfg *Config) error {
	if cfg.SupportThresholdBps > 10000 {
		return errf(ErrPolicy, "support threshold %d bps above 10000", cfg.SupportThresholdBps)
	}
	if cfg.QuorumBps < 100 || cfg.QuorumBps > 10000 {
		return errf(ErrPolicy, "quorum %d bps outside [100,10000]", cfg.QuorumBps)
	}
	if cfg.MaxProposalAge <= 0 {
		return errf(ErrPolicy, "max proposal age must be positive")
	}
	if cfg.ElectionDuration <= 0 {
		return errf(ErrPolicy, "election duration must be positive")
	}
	if cfg.VestingPeriod < 0 {
		return errf(ErrPolicy, "vesting period must not be negative")
	}
	if cfg.TokenSalePrice < 0 {
		return errf(ErrPolicy, "token sale price must not be negative")
	}
	if cfg.MaxVestingEntries == 0 {
		cfg.MaxVestingEntries = defaultMaxVestingEntries
	}
	return nil
}

const defaultMaxVestingEntries = 32

// CreateDAO initializes the singleton governance instance and mints the
// initial governance allocation. Initial holdings vest like purchases when
// a vesting period is configured. Returns the derived treasury account.
func (e *Engine) CreateDAO(env sdk.Env, cfg Config, holders map[sdk.Address]Amount) (sdk.Address, error) {
	var account sdk.Address
	err := e.run(env, func(m *machine) error {
		if m.st.Get(daoKey()) != nil {
			return errf(ErrWrongState, "dao already created")
		}
		if err := validateConfig(&cfg); err != nil {
			return err
		}
		d := &DAO{
			Creator:   env.Sender,
			CreatedAt: env.Timestamp,
			Config:    cfg,
			Tx:        env.TxID,
		}
		d.Account = m.deriveAccount(d, "dao")
		m.saveDAO(d)

		// deterministic mint order regardless of map iteration
		addrs := make([]sdk.Address, 0, len(holders))
		for a := range holders {
			addrs = append(addrs, a)
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		for _, a := range addrs {
			amt := holders[a]
			if amt <= 0 {
				return errf(ErrPolicy, "allocation for %s must be positive", a)
			}
			if !a.IsValid() || a.IsDerived() {
				return errf(ErrPolicy, "allocation address %q not a user account", a)
			}
			if err := m.mint(a, GovernanceClass, amt); err != nil {
				return err
			}
			if err := m.addVestingSchedule(a, amt); err != nil {
				return err
			}
		}
		account = d.Account
		m.emit(EventDAOCreated, DAOCreatedData{
			Creator: env.Sender,
			Account: d.Account,
			Holders: uint32(len(holders)),
		})
		return nil
	})
	return account, err
}

// Deposit is the host-level funding capability: it credits tokens from
// outside the engine (bridged deposits, genesis allocations). Governance
// deposits vest like any other inflow.
func (e *Engine) Deposit(env sdk.Env, to sdk.Address, class ClassID, amount Amount) error {
	return e.run(env, func(m *machine) error {
		if _, err := m.dao(); err != nil {
			return err
		}
		if amount <= 0 {
			return errf(ErrPolicy, "deposit amount must be positive")
		}
		if !to.IsValid() {
			return errf(ErrPolicy, "invalid deposit address %q", to)
		}
		if err := m.mint(to, class, amount); err != nil {
			return err
		}
		if class == GovernanceClass {
			if err := m.addVestingSchedule(to, amount); err != nil {
				return err
			}
		}
		m.emit(EventDeposit, TransferData{
			To:     to,
			Class:  class,
			Amount: amount,
		})
		return nil
	})
}
