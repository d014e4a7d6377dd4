package contract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vesta_dao/sdk"
)

const (
	alice = sdk.Address("user:alice")
	bob   = sdk.Address("user:bob")
	carol = sdk.Address("user:carol")
)

func baseConfig() Config {
	return Config{
		SupportThresholdBps: 2000,
		QuorumBps:           5100,
		MaxProposalAge:      1000,
		ElectionDuration:    100,
	}
}

func envAt(sender sdk.Address, ts int64) sdk.Env {
	return sdk.Env{Sender: sender, Timestamp: ts, TxID: "tx-test"}
}

// newDAO spins up an engine over fresh memory state, creates the DAO at
// t=10 as alice and returns the engine with its treasury account.
func newDAO(t *testing.T, cfg Config, holders map[sdk.Address]Amount) (*Engine, sdk.Address) {
	t.Helper()
	e := New(sdk.NewMemState())
	account, err := e.CreateDAO(envAt(alice, 10), cfg, holders)
	require.NoError(t, err)
	return e, account
}

// openElection creates an ordinary proposal as alice at t=20 and pushes it
// over the support threshold, returning the live proposal.
func openElection(t *testing.T, e *Engine, support Amount) *Proposal {
	t.Helper()
	id, err := e.NewProposal(envAt(alice, 20), "upgrade the treasury policy")
	require.NoError(t, err)
	require.NoError(t, e.AddSupport(envAt(alice, 20), id, support))
	p, err := e.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, ProposalElection, p.State)
	return p
}

// claimAndVote claims voting tokens for the sender and casts them all on
// one side of the election.
func claimAndVote(t *testing.T, e *Engine, sender sdk.Address, p *Proposal, ts int64, yes bool) Amount {
	t.Helper()
	minted, err := e.ClaimVotingTokens(envAt(sender, ts), p.ID)
	require.NoError(t, err)
	target := p.YesAddress
	if !yes {
		target = p.NoAddress
	}
	require.NoError(t, e.Transfer(envAt(sender, ts), target, p.VotingClass, minted))
	return minted
}
