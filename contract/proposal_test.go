package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vesta_dao/sdk"
)

func TestElectionEarlyTermination(t *testing.T) {
	// alice 100, bob 50. Threshold 20% of 150 = 30, absolute majority 76.
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	assert.Equal(t, Amount(150), p.SnapshotTotalVotes)
	assert.Equal(t, ClassID(2), p.VotingClass)
	require.NotNil(t, e.VoteAddressFor(p.YesAddress))
	require.NotNil(t, e.VoteAddressFor(p.NoAddress))

	minted, err := e.ClaimVotingTokens(envAt(alice, 25), p.ID)
	require.NoError(t, err)
	assert.Equal(t, Amount(100), minted)
	// support 30 plus voting top-up 70 locks alice's full power
	assert.Equal(t, Amount(100), e.GovernanceLockOf(alice))
	assert.Equal(t, Amount(0), e.TransferableBalance(alice, 25))

	minted, err = e.ClaimVotingTokens(envAt(bob, 25), p.ID)
	require.NoError(t, err)
	assert.Equal(t, Amount(50), minted)

	// 60 yes and 50 no is no majority yet
	require.NoError(t, e.Transfer(envAt(alice, 30), p.YesAddress, p.VotingClass, 60))
	require.NoError(t, e.Transfer(envAt(bob, 35), p.NoAddress, p.VotingClass, 50))
	got, err := e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalElection, got.State)

	// the remaining 40 yes votes push past 76 and settle in-transaction
	require.NoError(t, e.Transfer(envAt(alice, 40), p.YesAddress, p.VotingClass, 40))
	got, err = e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalPassed, got.State)
	assert.True(t, got.EarlyResolved)
	assert.Equal(t, int64(40), got.ResolvedAt)

	// the dead election accepts no more votes
	err = e.Transfer(envAt(bob, 41), p.YesAddress, p.VotingClass, 1)
	assert.ErrorIs(t, err, ErrWrongState)

	// locks come back on request
	require.NoError(t, e.ReleaseProposalLocks(envAt(alice, 50), p.ID))
	assert.Equal(t, Amount(0), e.GovernanceLockOf(alice))
	assert.Equal(t, Amount(100), e.TransferableBalance(alice, 50))
}

func TestEarlyTerminationNoMajority(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	claimAndVote(t, e, bob, p, 30, false)
	// 50 no votes of 150 cannot settle anything early
	require.NoError(t, e.CheckEarlyTermination(envAt(carol, 35), p.ID))
	got, err := e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalElection, got.State)
}

func TestExecuteAfterWindow(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	_, err := e.ClaimVotingTokens(envAt(alice, 25), p.ID)
	require.NoError(t, err)
	require.NoError(t, e.Transfer(envAt(alice, 30), p.YesAddress, p.VotingClass, 60))
	claimAndVote(t, e, bob, p, 35, false)

	// window [20,120) is still open at 119
	err = e.Execute(envAt(carol, 119), p.ID)
	assert.ErrorIs(t, err, ErrOutsideWindow)

	// turnout 110 of 150 beats the 51% quorum, 60 yes beats 50 no
	require.NoError(t, e.Execute(envAt(carol, 120), p.ID))
	got, err := e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalPassed, got.State)
	assert.False(t, got.EarlyResolved)
}

func TestExecuteQuorumFailure(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	_, err := e.ClaimVotingTokens(envAt(alice, 25), p.ID)
	require.NoError(t, err)
	require.NoError(t, e.Transfer(envAt(alice, 30), p.YesAddress, p.VotingClass, 60))

	// turnout 60 of 150 misses the 51% quorum despite unanimous yes
	require.NoError(t, e.Execute(envAt(carol, 120), p.ID))
	got, err := e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalFailed, got.State)
}

func TestFailProposalRejectsWinningOutcome(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	_, err := e.ClaimVotingTokens(envAt(alice, 25), p.ID)
	require.NoError(t, err)
	_, err = e.ClaimVotingTokens(envAt(bob, 25), p.ID)
	require.NoError(t, err)
	// 70 yes, 20 no: passing but short of the 76 early majority
	require.NoError(t, e.Transfer(envAt(alice, 30), p.YesAddress, p.VotingClass, 70))
	require.NoError(t, e.Transfer(envAt(bob, 35), p.NoAddress, p.VotingClass, 20))

	err = e.FailProposal(envAt(carol, 120), p.ID)
	assert.ErrorIs(t, err, ErrWrongState)

	require.NoError(t, e.Execute(envAt(carol, 120), p.ID))
}

func TestFailProposalSettlesLosingOutcome(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	err := e.FailProposal(envAt(carol, 120), p.ID)
	require.NoError(t, err)
	got, err := e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalFailed, got.State)
}

func TestExpireProposal(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100})
	id, err := e.NewProposal(envAt(alice, 20), "do nothing in particular")
	require.NoError(t, err)

	err = e.ExpireProposal(envAt(bob, 1020), id)
	assert.ErrorIs(t, err, ErrOutsideWindow)

	require.NoError(t, e.ExpireProposal(envAt(bob, 1021), id))
	got, err := e.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, ProposalExpired, got.State)

	err = e.AddSupport(envAt(alice, 1022), id, 10)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSupportWindowCloses(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100})
	id, err := e.NewProposal(envAt(alice, 20), "do nothing in particular")
	require.NoError(t, err)

	err = e.AddSupport(envAt(alice, 1021), id, 10)
	assert.ErrorIs(t, err, ErrOutsideWindow)

	// locks from a stale open proposal release without an expiry call
	require.NoError(t, e.ReleaseProposalLocks(envAt(alice, 1021), id))
}

func TestSupportValidation(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 5000})
	id, err := e.NewProposal(envAt(alice, 20), "do nothing in particular")
	require.NoError(t, err)

	err = e.AddSupport(envAt(alice, 21), id, 0)
	assert.ErrorIs(t, err, ErrPolicy)

	err = e.AddSupport(envAt(alice, 21), id, 101)
	assert.ErrorIs(t, err, ErrInsufficientVested)

	err = e.AddSupport(envAt(alice, 21), 99, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	// cumulative pledges are capped by the vested balance
	require.NoError(t, e.AddSupport(envAt(alice, 21), id, 80))
	err = e.AddSupport(envAt(alice, 22), id, 21)
	assert.ErrorIs(t, err, ErrInsufficientVested)
}

func TestProposalRightsNeedVestedBalance(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100})
	_, err := e.NewProposal(envAt(carol, 20), "outsider proposal")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClaimVotingTokensOnce(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	_, err := e.ClaimVotingTokens(envAt(alice, 25), p.ID)
	require.NoError(t, err)
	_, err = e.ClaimVotingTokens(envAt(alice, 26), p.ID)
	assert.ErrorIs(t, err, ErrWrongState)

	_, err = e.ClaimVotingTokens(envAt(carol, 26), p.ID)
	assert.ErrorIs(t, err, ErrInsufficientVested)

	_, err = e.ClaimVotingTokens(envAt(bob, 120), p.ID)
	assert.ErrorIs(t, err, ErrOutsideWindow)
}

func TestVotingPowerConservedAcrossTransfer(t *testing.T) {
	// moving unlocked tokens after the snapshot moves the claim with them,
	// so the combined power never exceeds the frozen balance
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 5000})
	id, err := e.NewProposal(envAt(alice, 20), "shift power around")
	require.NoError(t, err)
	require.NoError(t, e.AddSupport(envAt(bob, 20), id, 1020))
	p, err := e.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, ProposalElection, p.State)

	require.NoError(t, e.Transfer(envAt(alice, 25), carol, GovernanceClass, 40))
	a, err := e.ClaimVotingTokens(envAt(alice, 30), id)
	require.NoError(t, err)
	c, err := e.ClaimVotingTokens(envAt(carol, 30), id)
	require.NoError(t, err)
	assert.Equal(t, Amount(100), a+c)
}

func TestMidElectionPurchaseCarriesNoVotingPower(t *testing.T) {
	// the snapshot freezes at election start; tokens minted into the window
	// must not buy a say in it
	cfg := baseConfig()
	cfg.TokenSalePrice = 1
	cfg.Flags = FlagMintOnPurchase
	e, _ := newDAO(t, cfg, map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)
	require.Equal(t, Amount(150), p.SnapshotTotalVotes)

	require.NoError(t, e.Deposit(envAt(alice, 22), carol, NativeClass, 1000))
	tokens, err := e.Purchase(envAt(carol, 25), 1000)
	require.NoError(t, err)
	require.Equal(t, Amount(1000), tokens)

	// carol's fresh majority stake claims nothing against the snapshot
	_, err = e.ClaimVotingTokens(envAt(carol, 30), p.ID)
	assert.ErrorIs(t, err, ErrInsufficientVested)
	got, err := e.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalElection, got.State)

	// a deposit topping up an existing holder is capped the same way
	require.NoError(t, e.Deposit(envAt(alice, 26), bob, GovernanceClass, 500))
	minted, err := e.ClaimVotingTokens(envAt(bob, 30), p.ID)
	require.NoError(t, err)
	assert.Equal(t, Amount(50), minted)

	// the same tokens count in full once an election starts after the mint
	id, err := e.NewProposal(envAt(carol, 200), "spend the new war chest")
	require.NoError(t, err)
	require.NoError(t, e.AddSupport(envAt(carol, 200), id, 330))
	minted, err = e.ClaimVotingTokens(envAt(carol, 205), id)
	require.NoError(t, err)
	assert.Equal(t, Amount(1000), minted)
}

func TestReleaseBurnsLeftoverVotingTokens(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)

	_, err := e.ClaimVotingTokens(envAt(alice, 25), p.ID)
	require.NoError(t, err)
	require.NoError(t, e.Transfer(envAt(alice, 30), p.YesAddress, p.VotingClass, 60))
	require.NoError(t, e.Execute(envAt(carol, 120), p.ID))

	require.Equal(t, Amount(40), e.BalanceOf(alice, p.VotingClass))
	require.NoError(t, e.ReleaseProposalLocks(envAt(alice, 130), p.ID))
	assert.Equal(t, Amount(0), e.BalanceOf(alice, p.VotingClass))
	assert.Equal(t, Amount(60), e.TotalSupply(p.VotingClass))
}

func TestReleaseBeforeSettlementFails(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100, bob: 50})
	p := openElection(t, e, 30)
	err := e.ReleaseProposalLocks(envAt(alice, 30), p.ID)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestParameterProposalLifecycle(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100})

	_, err := e.NewParameterProposal(envAt(alice, 20), "tighter quorum", ParamQuorum, 50)
	assert.ErrorIs(t, err, ErrPolicy)

	id, err := e.NewParameterProposal(envAt(alice, 20), "lower quorum", ParamQuorum, 2000)
	require.NoError(t, err)
	require.NoError(t, e.AddSupport(envAt(alice, 21), id, 100))
	p, err := e.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, ProposalElection, p.State)

	claimAndVote(t, e, alice, p, 25, true) // 100 of 100 is an instant majority
	got, err := e.GetProposal(id)
	require.NoError(t, err)
	require.Equal(t, ProposalPassed, got.State)

	d, err := e.GetDAO()
	require.NoError(t, err)
	assert.Equal(t, uint32(2000), d.Config.QuorumBps)
}

func TestMintProposalLifecycle(t *testing.T) {
	cfg := baseConfig()
	cfg.Flags = FlagAllowMinting
	e, _ := newDAO(t, cfg, map[sdk.Address]Amount{alice: 100})

	id, err := e.NewMintProposal(envAt(alice, 20), "reward carol", 25, carol)
	require.NoError(t, err)
	require.NoError(t, e.AddSupport(envAt(alice, 21), id, 100))
	p, err := e.GetProposal(id)
	require.NoError(t, err)
	claimAndVote(t, e, alice, p, 25, true)

	assert.Equal(t, Amount(25), e.BalanceOf(carol, GovernanceClass))
	assert.Equal(t, Amount(125), e.TotalSupply(GovernanceClass))
}

func TestMintProposalNeedsFlag(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100})
	_, err := e.NewMintProposal(envAt(alice, 20), "reward carol", 25, carol)
	assert.ErrorIs(t, err, ErrPolicy)
}
