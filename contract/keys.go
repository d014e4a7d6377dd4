package contract

import (
	"encoding/binary"
	"fmt"

	"vesta_dao/sdk"
)

// Record keys are packed bytes behind a one-byte prefix so related records
// share a namespace without string formatting on the hot path. Plain
// counters and running totals keep readable string keys.
const (
	kDAO byte = 0x01

	kBalance   byte = 0x10
	kSupply    byte = 0x11
	kHolderArr byte = 0x12
	kHolderPos byte = 0x13

	kVesting  byte = 0x20
	kGovLock  byte = 0x21
	kDistLock byte = 0x22
	kMintLog  byte = 0x23

	kProposal    byte = 0x30
	kSupport     byte = 0x31
	kVotingClaim byte = 0x32
	kVoteAddr    byte = 0x33
	kClassOwner  byte = 0x34

	kFundLock byte = 0x40
	kFundArr  byte = 0x41
	kFundPos  byte = 0x42

	kDistribution byte = 0x50
	kDistEntry    byte = 0x51
)

const (
	keyProposalCount = "count:props"
	keyClassCount    = "count:classes"
	keyFundLockCount = "count:fundlocks"
	keyUnvested      = "supply:unvested"
)

func packU64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

func key(prefix byte, parts ...[]byte) string {
	b := []byte{prefix}
	for _, p := range parts {
		b = append(b, p...)
	}
	return string(b)
}

func u64b(v uint64) []byte {
	return packU64(nil, v)
}

func daoKey() string {
	return key(kDAO)
}

func balanceKey(class ClassID, holder sdk.Address) string {
	return key(kBalance, u64b(uint64(class)), []byte(holder))
}

func supplyKey(class ClassID) string {
	return key(kSupply, u64b(uint64(class)))
}

func holderArrKey(pos uint64) string {
	return key(kHolderArr, u64b(pos))
}

func holderPosKey(holder sdk.Address) string {
	return key(kHolderPos, []byte(holder))
}

func holderCountKey() string {
	return "count:holders"
}

func vestingKey(holder sdk.Address) string {
	return key(kVesting, []byte(holder))
}

func govLockKey(holder sdk.Address) string {
	return key(kGovLock, []byte(holder))
}

func distLockKey(holder sdk.Address) string {
	return key(kDistLock, []byte(holder))
}

func proposalKey(id uint64) string {
	return key(kProposal, u64b(id))
}

func supportKey(id uint64, holder sdk.Address) string {
	return key(kSupport, u64b(id), []byte(holder))
}

func votingClaimKey(id uint64, holder sdk.Address) string {
	return key(kVotingClaim, u64b(id), []byte(holder))
}

func voteAddrKey(addr sdk.Address) string {
	return key(kVoteAddr, []byte(addr))
}

func mintLogKey(holder sdk.Address) string {
	return key(kMintLog, []byte(holder))
}

func classOwnerKey(class ClassID) string {
	return key(kClassOwner, u64b(uint64(class)))
}

func fundLockKey(id uint64) string {
	return key(kFundLock, u64b(id))
}

func fundArrKey(pos uint64) string {
	return key(kFundArr, u64b(pos))
}

func fundPosKey(id uint64) string {
	return key(kFundPos, u64b(id))
}

func distributionKey(id uint64) string {
	return key(kDistribution, u64b(id))
}

func distEntryKey(id uint64, holder sdk.Address) string {
	return key(kDistEntry, u64b(id), []byte(holder))
}

// getCount reads a string counter key, 0 when absent.
func getCount(st sdk.State, k string) uint64 {
	raw := st.Get(k)
	if raw == nil {
		return 0
	}
	var v uint64
	if _, err := fmt.Sscanf(*raw, "%d", &v); err != nil {
		return 0
	}
	return v
}

func setCount(st sdk.State, k string, v uint64) {
	if v == 0 {
		st.Delete(k)
		return
	}
	st.Set(k, fmt.Sprintf("%d", v))
}

// getAmount reads a string amount key, 0 when absent.
func getAmount(st sdk.State, k string) Amount {
	raw := st.Get(k)
	if raw == nil {
		return 0
	}
	var v int64
	if _, err := fmt.Sscanf(*raw, "%d", &v); err != nil {
		return 0
	}
	return Amount(v)
}

func setAmount(st sdk.State, k string, v Amount) {
	if v == 0 {
		st.Delete(k)
		return
	}
	st.Set(k, fmt.Sprintf("%d", int64(v)))
}
