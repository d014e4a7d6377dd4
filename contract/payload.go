package contract

import (
	"fmt"

	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"

	"vesta_dao/sdk"
)

// JSON argument structs for the call boundary. Hosts hand the engine an
// action name plus a JSON payload; Apply decodes and dispatches.

type TransferArgs struct {
	To     string `json:"to"`
	Class  uint64 `json:"class"`
	Amount int64  `json:"amount"`
}

type PurchaseArgs struct {
	Spend int64 `json:"spend"`
}

type CreateProposalArgs struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	AssetClass  uint64 `json:"asset_class"`
	AssetID     uint64 `json:"asset_id"`
	Amount      int64  `json:"amount"`
	Recipient   string `json:"recipient"`
	Param       string `json:"param"`
	Value       int64  `json:"value"`
}

type SupportArgs struct {
	ProposalID uint64 `json:"proposal_id"`
	Amount     int64  `json:"amount"`
}

type ProposalRefArgs struct {
	ProposalID uint64 `json:"proposal_id"`
}

func (v *TransferArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "to":
			v.To = string(in.String())
		case "class":
			v.Class = uint64(in.Uint64())
		case "amount":
			v.Amount = int64(in.Int64())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (v TransferArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawByte('{')
	out.RawString("\"to\":")
	out.String(v.To)
	out.RawString(",\"class\":")
	out.Uint64(v.Class)
	out.RawString(",\"amount\":")
	out.Int64(v.Amount)
	out.RawByte('}')
}

func (v *PurchaseArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "spend":
			v.Spend = int64(in.Int64())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (v PurchaseArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawByte('{')
	out.RawString("\"spend\":")
	out.Int64(v.Spend)
	out.RawByte('}')
}

func (v *CreateProposalArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "kind":
			v.Kind = string(in.String())
		case "description":
			v.Description = string(in.String())
		case "asset_class":
			v.AssetClass = uint64(in.Uint64())
		case "asset_id":
			v.AssetID = uint64(in.Uint64())
		case "amount":
			v.Amount = int64(in.Int64())
		case "recipient":
			v.Recipient = string(in.String())
		case "param":
			v.Param = string(in.String())
		case "value":
			v.Value = int64(in.Int64())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (v CreateProposalArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawByte('{')
	out.RawString("\"kind\":")
	out.String(v.Kind)
	out.RawString(",\"description\":")
	out.String(v.Description)
	out.RawString(",\"asset_class\":")
	out.Uint64(v.AssetClass)
	out.RawString(",\"asset_id\":")
	out.Uint64(v.AssetID)
	out.RawString(",\"amount\":")
	out.Int64(v.Amount)
	out.RawString(",\"recipient\":")
	out.String(v.Recipient)
	out.RawString(",\"param\":")
	out.String(v.Param)
	out.RawString(",\"value\":")
	out.Int64(v.Value)
	out.RawByte('}')
}

func (v *SupportArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "proposal_id":
			v.ProposalID = uint64(in.Uint64())
		case "amount":
			v.Amount = int64(in.Int64())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (v SupportArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawByte('{')
	out.RawString("\"proposal_id\":")
	out.Uint64(v.ProposalID)
	out.RawString(",\"amount\":")
	out.Int64(v.Amount)
	out.RawByte('}')
}

func (v *ProposalRefArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "proposal_id":
			v.ProposalID = uint64(in.Uint64())
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (v ProposalRefArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawByte('{')
	out.RawString("\"proposal_id\":")
	out.Uint64(v.ProposalID)
	out.RawByte('}')
}

func decodeTransferArgs(data []byte) (*TransferArgs, error) {
	a := &TransferArgs{}
	l := jlexer.Lexer{Data: data}
	a.UnmarshalTinyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, errf(ErrPolicy, "bad payload: %v", err)
	}
	return a, nil
}

func decodePurchaseArgs(data []byte) (*PurchaseArgs, error) {
	a := &PurchaseArgs{}
	l := jlexer.Lexer{Data: data}
	a.UnmarshalTinyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, errf(ErrPolicy, "bad payload: %v", err)
	}
	return a, nil
}

func decodeCreateProposalArgs(data []byte) (*CreateProposalArgs, error) {
	a := &CreateProposalArgs{}
	l := jlexer.Lexer{Data: data}
	a.UnmarshalTinyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, errf(ErrPolicy, "bad payload: %v", err)
	}
	return a, nil
}

func decodeSupportArgs(data []byte) (*SupportArgs, error) {
	a := &SupportArgs{}
	l := jlexer.Lexer{Data: data}
	a.UnmarshalTinyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, errf(ErrPolicy, "bad payload: %v", err)
	}
	return a, nil
}

func decodeProposalRefArgs(data []byte) (*ProposalRefArgs, error) {
	a := &ProposalRefArgs{}
	l := jlexer.Lexer{Data: data}
	a.UnmarshalTinyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, errf(ErrPolicy, "bad payload: %v", err)
	}
	return a, nil
}

// Apply decodes a JSON payload for the named action and runs it. The result
// string is a human-readable receipt, mostly amounts and ids.
func (e *Engine) Apply(env sdk.Env, action string, payload []byte) (string, error) {
	switch action {
	case "token_transfer":
		a, err := decodeTransferArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.Transfer(env, sdk.Address(a.To), ClassID(a.Class), Amount(a.Amount)); err != nil {
			return "", err
		}
		return "ok", nil
	case "token_purchase":
		a, err := decodePurchaseArgs(payload)
		if err != nil {
			return "", err
		}
		tokens, err := e.Purchase(env, Amount(a.Spend))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", tokens), nil
	case "vesting_claim":
		freed, err := e.ClaimVestedTokens(env)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", freed), nil
	case "proposal_create":
		a, err := decodeCreateProposalArgs(payload)
		if err != nil {
			return "", err
		}
		id, err := e.createFromArgs(env, a)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", id), nil
	case "proposal_support":
		a, err := decodeSupportArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.AddSupport(env, a.ProposalID, Amount(a.Amount)); err != nil {
			return "", err
		}
		return "ok", nil
	case "votes_claim":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		minted, err := e.ClaimVotingTokens(env, a.ProposalID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", minted), nil
	case "election_check":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.CheckEarlyTermination(env, a.ProposalID); err != nil {
			return "", err
		}
		return "ok", nil
	case "proposal_execute":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.Execute(env, a.ProposalID); err != nil {
			return "", err
		}
		return "ok", nil
	case "proposal_fail":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.FailProposal(env, a.ProposalID); err != nil {
			return "", err
		}
		return "ok", nil
	case "proposal_expire":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.ExpireProposal(env, a.ProposalID); err != nil {
			return "", err
		}
		return "ok", nil
	case "locks_release":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.ReleaseProposalLocks(env, a.ProposalID); err != nil {
			return "", err
		}
		return "ok", nil
	case "dist_register":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		shares, err := e.RegisterForDistribution(env, a.ProposalID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", shares), nil
	case "dist_claim":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		payout, err := e.ClaimDistribution(env, a.ProposalID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", payout), nil
	case "dist_release":
		a, err := decodeProposalRefArgs(payload)
		if err != nil {
			return "", err
		}
		if err := e.ReleaseDistributionLock(env, a.ProposalID); err != nil {
			return "", err
		}
		return "ok", nil
	default:
		return "", errf(ErrPolicy, "unknown action %q", action)
	}
}

func (e *Engine) createFromArgs(env sdk.Env, a *CreateProposalArgs) (uint64, error) {
	switch ProposalKindFromString(a.Kind) {
	case KindOrdinary:
		return e.NewProposal(env, a.Description)
	case KindTreasury:
		return e.NewTreasuryProposal(env, a.Description, ClassID(a.AssetClass), a.AssetID, Amount(a.Amount), sdk.Address(a.Recipient))
	case KindDistribution:
		return e.NewDistributionProposal(env, a.Description, ClassID(a.AssetClass), a.AssetID, Amount(a.Amount))
	case KindParameter:
		return e.NewParameterProposal(env, a.Description, ParamFromString(a.Param), a.Value)
	case KindMint:
		return e.NewMintProposal(env, a.Description, Amount(a.Amount), sdk.Address(a.Recipient))
	default:
		return 0, errf(ErrPolicy, "unknown proposal kind %q", a.Kind)
	}
}
