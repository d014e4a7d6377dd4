package contract

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"vesta_dao/sdk"
)

// Derived addresses are plain hashes over instance-unique material plus a
// purpose tag. Nobody holds a key for them, so funds sent there move only
// when the engine itself moves them.

func deriveDigest(tag string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, p := range parts {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil)[:20])
}

func i64b(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

// deriveAccount derives the treasury account at creation time. Bumps the
// DAO's derivation counter.
func (m *machine) deriveAccount(d *DAO, tag string) sdk.Address {
	digest := deriveDigest(tag,
		[]byte(d.Creator),
		i64b(d.CreatedAt),
		[]byte(d.Tx),
		u64b(d.DeriveSeq),
	)
	d.DeriveSeq++
	return sdk.Address(tag + ":" + digest)
}

// deriveProposalAddress derives a vote or pool address bound to one
// proposal. The digest mixes treasury account, proposal identity and the
// derivation counter, so no two elections ever share an address.
func (m *machine) deriveProposalAddress(d *DAO, p *Proposal, tag string) sdk.Address {
	digest := deriveDigest(tag,
		[]byte(d.Account),
		u64b(p.ID),
		[]byte(p.Proposer),
		[]byte(p.Description),
		i64b(m.env.Timestamp),
		u64b(d.DeriveSeq),
	)
	d.DeriveSeq++
	prefix := "vote"
	if tag == "pool" {
		prefix = "pool"
	}
	return sdk.Address(prefix + ":" + digest)
}

// registerVoteAddr records the reverse mapping from a derived vote address
// to its election so the transfer hook resolves votes in one lookup.
func (m *machine) registerVoteAddr(addr sdk.Address, proposalID uint64, yes bool) {
	m.st.Set(voteAddrKey(addr), string(encodeVoteRef(&VoteRef{ProposalID: proposalID, Yes: yes})))
}

func (m *machine) voteRef(addr sdk.Address) *VoteRef {
	raw := m.st.Get(voteAddrKey(addr))
	if raw == nil {
		return nil
	}
	ref, err := decodeVoteRef([]byte(*raw))
	if err != nil {
		return nil
	}
	return ref
}
