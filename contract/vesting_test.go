package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vesta_dao/sdk"
)

func vestingConfig() Config {
	cfg := baseConfig()
	cfg.VestingPeriod = 100
	cfg.TokenSalePrice = 1
	cfg.Flags = FlagMintOnPurchase
	return cfg
}

func TestPurchaseVestsOverTime(t *testing.T) {
	e, _ := newDAO(t, vestingConfig(), map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), bob, NativeClass, 500))

	// two purchases at different times, a third merging into the second
	tokens, err := e.Purchase(envAt(bob, 20), 40)
	require.NoError(t, err)
	assert.Equal(t, Amount(40), tokens)
	_, err = e.Purchase(envAt(bob, 50), 10)
	require.NoError(t, err)
	_, err = e.Purchase(envAt(bob, 50), 5)
	require.NoError(t, err)

	assert.Equal(t, Amount(55), e.BalanceOf(bob, GovernanceClass))
	schedules := e.VestingSchedulesOf(bob)
	require.Len(t, schedules, 2)
	assert.Equal(t, VestingSchedule{Amount: 40, Unlock: 120}, schedules[0])
	assert.Equal(t, VestingSchedule{Amount: 15, Unlock: 150}, schedules[1])

	// nothing moves while everything is still locked
	assert.Equal(t, Amount(0), e.VestedBalance(bob, 60))
	assert.Equal(t, Amount(0), e.TransferableBalance(bob, 60))
	err = e.Transfer(envAt(bob, 60), carol, GovernanceClass, 1)
	assert.ErrorIs(t, err, ErrLockedBalance)

	// the first slice unlocks at 120
	assert.Equal(t, Amount(40), e.VestedBalance(bob, 121))
	freed, err := e.ClaimVestedTokens(envAt(bob, 121))
	require.NoError(t, err)
	assert.Equal(t, Amount(40), freed)
	require.Len(t, e.VestingSchedulesOf(bob), 1)
	require.NoError(t, e.Transfer(envAt(bob, 121), carol, GovernanceClass, 40))

	// the rest at 150
	freed, err = e.ClaimVestedTokens(envAt(bob, 150))
	require.NoError(t, err)
	assert.Equal(t, Amount(15), freed)
	assert.Empty(t, e.VestingSchedulesOf(bob))
	assert.Equal(t, Amount(15), e.TransferableBalance(bob, 150))
}

func TestTransferPurgesExpiredSchedules(t *testing.T) {
	e, _ := newDAO(t, vestingConfig(), map[sdk.Address]Amount{alice: 100})

	// alice's genesis allocation unlocks at 110; a transfer after that
	// purges the schedule without an explicit claim
	require.Len(t, e.VestingSchedulesOf(alice), 1)
	require.NoError(t, e.Transfer(envAt(alice, 120), bob, GovernanceClass, 30))
	assert.Empty(t, e.VestingSchedulesOf(alice))
}

func TestTotalVestedSupplyFollowsClaims(t *testing.T) {
	e, _ := newDAO(t, vestingConfig(), map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), bob, NativeClass, 100))
	_, err := e.Purchase(envAt(bob, 20), 40)
	require.NoError(t, err)

	// everything unvested until holders claim
	assert.Equal(t, Amount(0), e.TotalVestedSupply())

	_, err = e.ClaimVestedTokens(envAt(bob, 121))
	require.NoError(t, err)
	assert.Equal(t, Amount(40), e.TotalVestedSupply())

	_, err = e.ClaimVestedTokens(envAt(alice, 121))
	require.NoError(t, err)
	assert.Equal(t, Amount(140), e.TotalVestedSupply())
}

func TestVestingEntryCapacity(t *testing.T) {
	cfg := vestingConfig()
	cfg.MaxVestingEntries = 2
	e, _ := newDAO(t, cfg, map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), bob, NativeClass, 100))

	_, err := e.Purchase(envAt(bob, 20), 10)
	require.NoError(t, err)
	_, err = e.Purchase(envAt(bob, 21), 10)
	require.NoError(t, err)
	_, err = e.Purchase(envAt(bob, 22), 10)
	assert.ErrorIs(t, err, ErrPolicy)

	// merging into an existing slot still works at capacity
	_, err = e.Purchase(envAt(bob, 21), 10)
	require.NoError(t, err)
}

func TestPurchasePolicy(t *testing.T) {
	e, _ := newDAO(t, vestingConfig(), map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), bob, NativeClass, 100))

	_, err := e.Purchase(envAt(bob, 20), 0)
	assert.ErrorIs(t, err, ErrPolicy)
	_, err = e.Purchase(envAt(bob, 20), -3)
	assert.ErrorIs(t, err, ErrPolicy)

	// no native balance at all
	_, err = e.Purchase(envAt(carol, 20), 10)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestPurchaseDisabledWithoutPrice(t *testing.T) {
	e, _ := newDAO(t, baseConfig(), map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), bob, NativeClass, 100))
	_, err := e.Purchase(envAt(bob, 20), 10)
	assert.ErrorIs(t, err, ErrPolicy)
}

func TestHoldersOnlyPurchase(t *testing.T) {
	cfg := vestingConfig()
	cfg.Flags |= FlagHoldersOnlyPurchase
	e, _ := newDAO(t, cfg, map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), carol, NativeClass, 100))

	_, err := e.Purchase(envAt(carol, 20), 10)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// once carol holds any governance balance the sale opens up
	require.NoError(t, e.Transfer(envAt(alice, 120), carol, GovernanceClass, 1))
	_, err = e.Purchase(envAt(carol, 121), 10)
	require.NoError(t, err)
}

func TestPurchaseFromTreasury(t *testing.T) {
	cfg := baseConfig()
	cfg.TokenSalePrice = 2
	e, account := newDAO(t, cfg, map[sdk.Address]Amount{alice: 100})
	require.NoError(t, e.Deposit(envAt(alice, 15), account, GovernanceClass, 50))
	require.NoError(t, e.Deposit(envAt(alice, 15), bob, NativeClass, 100))

	tokens, err := e.Purchase(envAt(bob, 20), 10)
	require.NoError(t, err)
	assert.Equal(t, Amount(5), tokens)
	assert.Equal(t, Amount(5), e.BalanceOf(bob, GovernanceClass))
	assert.Equal(t, Amount(45), e.BalanceOf(account, GovernanceClass))
	assert.Equal(t, Amount(10), e.BalanceOf(account, NativeClass))
	// sale moved existing tokens, supply is unchanged
	assert.Equal(t, Amount(150), e.TotalSupply(GovernanceClass))
}
