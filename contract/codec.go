package contract

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"vesta_dao/sdk"
)

// Deterministic binary codec for stored records. Fixed ints are big-endian,
// lengths are varints, strings are length-prefixed. Same input always yields
// the same bytes, which keeps the state hashable across replicas.

var errCodecShort = errors.New("codec: truncated record")

type binWriter struct {
	buf []byte
}

func (w *binWriter) bytes() []byte {
	return w.buf
}

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *binWriter) writeUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *binWriter) writeUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *binWriter) writeUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

func (w *binWriter) writeVarUint(v uint64) {
	w.buf = binary.AppendUvarint(w.buf, v)
}

func (w *binWriter) writeAmount(v Amount) {
	w.writeInt64(int64(v))
}

func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *binWriter) writeAddress(a sdk.Address) {
	w.writeString(string(a))
}

type binReader struct {
	buf []byte
	off int
	err error
}

func (r *binReader) fail() {
	if r.err == nil {
		r.err = errCodecShort
	}
}

func (r *binReader) take(n int) []byte {
	if r.err != nil || r.off+n > len(r.buf) {
		r.fail()
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *binReader) readBool() bool {
	b := r.take(1)
	return b != nil && b[0] != 0
}

func (r *binReader) readUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binReader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *binReader) readUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *binReader) readInt64() int64 {
	return int64(r.readUint64())
}

func (r *binReader) readVarUint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		r.fail()
		return 0
	}
	r.off += n
	return v
}

func (r *binReader) readAmount() Amount {
	return Amount(r.readInt64())
}

func (r *binReader) readString() string {
	n := r.readVarUint()
	if r.err != nil || bits.Len64(n) > 31 {
		r.fail()
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *binReader) readAddress() sdk.Address {
	return sdk.Address(r.readString())
}

func encodeDAO(d *DAO) []byte {
	w := &binWriter{}
	w.writeAddress(d.Creator)
	w.writeAddress(d.Account)
	w.writeInt64(d.CreatedAt)
	w.writeUint32(d.Config.SupportThresholdBps)
	w.writeUint32(d.Config.QuorumBps)
	w.writeInt64(d.Config.MaxProposalAge)
	w.writeInt64(d.Config.ElectionDuration)
	w.writeInt64(d.Config.VestingPeriod)
	w.writeAmount(d.Config.TokenSalePrice)
	w.writeUint8(uint8(d.Config.Flags))
	w.writeUint32(d.Config.MaxVestingEntries)
	w.writeUint64(d.DeriveSeq)
	w.writeString(d.Tx)
	return w.bytes()
}

func decodeDAO(b []byte) (*DAO, error) {
	r := &binReader{buf: b}
	d := &DAO{}
	d.Creator = r.readAddress()
	d.Account = r.readAddress()
	d.CreatedAt = r.readInt64()
	d.Config.SupportThresholdBps = r.readUint32()
	d.Config.QuorumBps = r.readUint32()
	d.Config.MaxProposalAge = r.readInt64()
	d.Config.ElectionDuration = r.readInt64()
	d.Config.VestingPeriod = r.readInt64()
	d.Config.TokenSalePrice = r.readAmount()
	d.Config.Flags = Flags(r.readUint8())
	d.Config.MaxVestingEntries = r.readUint32()
	d.DeriveSeq = r.readUint64()
	d.Tx = r.readString()
	return d, r.err
}

func encodeProposal(p *Proposal) []byte {
	w := &binWriter{}
	w.writeUint64(p.ID)
	w.writeUint8(uint8(p.Kind))
	w.writeAddress(p.Proposer)
	w.writeString(p.Description)
	w.writeInt64(p.CreatedAt)
	w.writeUint8(uint8(p.State))
	w.writeAmount(p.SupportTotal)
	w.writeInt64(p.ElectionStart)
	w.writeUint64(uint64(p.VotingClass))
	w.writeAddress(p.YesAddress)
	w.writeAddress(p.NoAddress)
	w.writeAmount(p.SnapshotTotalVotes)
	w.writeInt64(p.ResolvedAt)
	w.writeBool(p.EarlyResolved)
	w.writeUint64(uint64(p.AssetClass))
	w.writeUint64(p.AssetID)
	w.writeAmount(p.ActionAmount)
	w.writeAddress(p.Recipient)
	w.writeUint8(uint8(p.Param))
	w.writeInt64(p.ParamValue)
	w.writeAmount(p.SupplyAtCreation)
	w.writeString(p.Tx)
	return w.bytes()
}

func decodeProposal(b []byte) (*Proposal, error) {
	r := &binReader{buf: b}
	p := &Proposal{}
	p.ID = r.readUint64()
	p.Kind = ProposalKind(r.readUint8())
	p.Proposer = r.readAddress()
	p.Description = r.readString()
	p.CreatedAt = r.readInt64()
	p.State = ProposalState(r.readUint8())
	p.SupportTotal = r.readAmount()
	p.ElectionStart = r.readInt64()
	p.VotingClass = ClassID(r.readUint64())
	p.YesAddress = r.readAddress()
	p.NoAddress = r.readAddress()
	p.SnapshotTotalVotes = r.readAmount()
	p.ResolvedAt = r.readInt64()
	p.EarlyResolved = r.readBool()
	p.AssetClass = ClassID(r.readUint64())
	p.AssetID = r.readUint64()
	p.ActionAmount = r.readAmount()
	p.Recipient = r.readAddress()
	p.Param = Param(r.readUint8())
	p.ParamValue = r.readInt64()
	p.SupplyAtCreation = r.readAmount()
	p.Tx = r.readString()
	return p, r.err
}

func encodeSchedules(s []VestingSchedule) []byte {
	w := &binWriter{}
	w.writeVarUint(uint64(len(s)))
	for _, e := range s {
		w.writeAmount(e.Amount)
		w.writeInt64(e.Unlock)
	}
	return w.bytes()
}

func decodeSchedules(b []byte) ([]VestingSchedule, error) {
	r := &binReader{buf: b}
	n := r.readVarUint()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]VestingSchedule, 0, n)
	for i := uint64(0); i < n; i++ {
		e := VestingSchedule{Amount: r.readAmount(), Unlock: r.readInt64()}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, e)
	}
	return out, r.err
}

func encodeMintLog(s []MintRecord) []byte {
	w := &binWriter{}
	w.writeVarUint(uint64(len(s)))
	for _, e := range s {
		w.writeAmount(e.Amount)
		w.writeInt64(e.At)
	}
	return w.bytes()
}

func decodeMintLog(b []byte) ([]MintRecord, error) {
	r := &binReader{buf: b}
	n := r.readVarUint()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]MintRecord, 0, n)
	for i := uint64(0); i < n; i++ {
		e := MintRecord{Amount: r.readAmount(), At: r.readInt64()}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, e)
	}
	return out, r.err
}

func encodeLockedFunds(l *LockedFunds) []byte {
	w := &binWriter{}
	w.writeUint64(l.ProposalID)
	w.writeUint64(uint64(l.AssetClass))
	w.writeUint64(l.AssetID)
	w.writeAmount(l.Amount)
	w.writeInt64(l.LockedAt)
	return w.bytes()
}

func decodeLockedFunds(b []byte) (*LockedFunds, error) {
	r := &binReader{buf: b}
	l := &LockedFunds{}
	l.ProposalID = r.readUint64()
	l.AssetClass = ClassID(r.readUint64())
	l.AssetID = r.readUint64()
	l.Amount = r.readAmount()
	l.LockedAt = r.readInt64()
	return l, r.err
}

func encodeDistribution(d *Distribution) []byte {
	w := &binWriter{}
	w.writeUint64(d.ProposalID)
	w.writeUint64(uint64(d.AssetClass))
	w.writeUint64(d.AssetID)
	w.writeAddress(d.Account)
	w.writeAmount(d.PoolTarget)
	w.writeAmount(d.SupplyAtCreation)
	w.writeAmount(d.TotalShares)
	w.writeAmount(d.PoolBalance)
	w.writeBool(d.Funded)
	return w.bytes()
}

func decodeDistribution(b []byte) (*Distribution, error) {
	r := &binReader{buf: b}
	d := &Distribution{}
	d.ProposalID = r.readUint64()
	d.AssetClass = ClassID(r.readUint64())
	d.AssetID = r.readUint64()
	d.Account = r.readAddress()
	d.PoolTarget = r.readAmount()
	d.SupplyAtCreation = r.readAmount()
	d.TotalShares = r.readAmount()
	d.PoolBalance = r.readAmount()
	d.Funded = r.readBool()
	return d, r.err
}

func encodeDistEntry(e *DistributionEntry) []byte {
	w := &binWriter{}
	w.writeAmount(e.Shares)
	w.writeBool(e.Claimed)
	return w.bytes()
}

func decodeDistEntry(b []byte) (*DistributionEntry, error) {
	r := &binReader{buf: b}
	e := &DistributionEntry{}
	e.Shares = r.readAmount()
	e.Claimed = r.readBool()
	return e, r.err
}

func encodeVotingClaim(c *VotingClaim) []byte {
	w := &binWriter{}
	w.writeAmount(c.Minted)
	w.writeAmount(c.Locked)
	return w.bytes()
}

func decodeVotingClaim(b []byte) (*VotingClaim, error) {
	r := &binReader{buf: b}
	c := &VotingClaim{}
	c.Minted = r.readAmount()
	c.Locked = r.readAmount()
	return c, r.err
}

func encodeVoteRef(v *VoteRef) []byte {
	w := &binWriter{}
	w.writeUint64(v.ProposalID)
	w.writeBool(v.Yes)
	return w.bytes()
}

func decodeVoteRef(b []byte) (*VoteRef, error) {
	r := &binReader{buf: b}
	v := &VoteRef{}
	v.ProposalID = r.readUint64()
	v.Yes = r.readBool()
	return v, r.err
}
