package entities

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/volatiletech/null/v8"
)

// Provider identifies which bridge provider produced a BridgeResponse.
type Provider string

const (
	ProviderAcross   Provider = "Across"
	ProviderDeBridge Provider = "DeBridge"
)

// PermitKind distinguishes the two pre-transfer signature schemes a
// caller may already hold for the source-chain token.
type PermitKind string

const (
	PermitKindEIP2612 PermitKind = "eip2612"
	PermitKindPermit2 PermitKind = "permit2"
)

// SenderPermit carries a caller-supplied signature the source token
// already recognizes. The DeBridge provider forwards its Hex verbatim
// as srcChainTokenInSenderPermit; the Allowance Engine still runs for
// EVM source chains.
type SenderPermit struct {
	Kind PermitKind `json:"kind"`
	Hex  string     `json:"hex"`
}

// BridgeRequest is the user's intent to move value from src_chain to
// dest_chain. Field names are serialized camelCase to match the
// Across/DeBridge wire conventions and the teacher's entity tagging
// style.
type BridgeRequest struct {
	SrcChainID      uint32        `json:"srcChainId"`
	DestChainID     uint32        `json:"destChainId"`
	SrcToken        string        `json:"srcToken"`
	DestToken       string        `json:"destToken"`
	SrcCaller       string        `json:"srcCaller"`
	DestRecipient   string        `json:"destRecipient"`
	SrcAmount       string        `json:"srcAmount"`
	DestAmount      null.String   `json:"destAmount,omitempty"`
	SrcSenderPermit *SenderPermit `json:"srcChainTokenInSenderPermit,omitempty"`
	Calldata        null.String   `json:"calldata,omitempty"`
	Simulate        bool          `json:"simulate,omitempty"`
}

// TxData is a ready-to-submit (or ready-to-approve) EVM transaction.
type TxData struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// BridgeActionKind discriminates the tagged union returned by a
// provider or the orchestrator.
type BridgeActionKind string

const (
	BridgeActionBridgingTx BridgeActionKind = "bridgingTx"
	BridgeActionPermitSig  BridgeActionKind = "permitSignature"
	BridgeActionPermit2Sig BridgeActionKind = "permit2Signature"
	BridgeActionPermit2Tx  BridgeActionKind = "permit2Tx"
	BridgeActionApprovalTx BridgeActionKind = "bridgeApprovalTx"
)

// BridgeAction is an externally-tagged sum type: exactly one case is
// populated, matching the Kind discriminator.
type BridgeAction struct {
	Kind             BridgeActionKind `json:"kind"`
	BridgingTx       *TxData          `json:"bridgingTx,omitempty"`
	PermitSignature  string           `json:"permitSignature,omitempty"`
	Permit2Signature string           `json:"permit2Signature,omitempty"`
	Permit2Tx        *TxData          `json:"permit2Tx,omitempty"`
	ApprovalProvider Provider         `json:"approvalProvider,omitempty"`
	ApprovalTx       *TxData          `json:"bridgeApprovalTx,omitempty"`
}

func NewBridgingTx(tx TxData) BridgeAction {
	return BridgeAction{Kind: BridgeActionBridgingTx, BridgingTx: &tx}
}

func NewPermitSignature(hex string) BridgeAction {
	return BridgeAction{Kind: BridgeActionPermitSig, PermitSignature: hex}
}

func NewPermit2Signature(hex string) BridgeAction {
	return BridgeAction{Kind: BridgeActionPermit2Sig, Permit2Signature: hex}
}

func NewPermit2Tx(tx TxData) BridgeAction {
	return BridgeAction{Kind: BridgeActionPermit2Tx, Permit2Tx: &tx}
}

func NewBridgeApprovalTx(provider Provider, tx TxData) BridgeAction {
	return BridgeAction{Kind: BridgeActionApprovalTx, ApprovalProvider: provider, ApprovalTx: &tx}
}

// MarshalJSON renders the action as an externally-tagged union:
// {"kind": "...", "<kind>": {...}}.
func (a BridgeAction) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind             BridgeActionKind `json:"kind"`
		BridgingTx       *TxData          `json:"bridgingTx,omitempty"`
		PermitSignature  string           `json:"permitSignature,omitempty"`
		Permit2Signature string           `json:"permit2Signature,omitempty"`
		Permit2Tx        *TxData          `json:"permit2Tx,omitempty"`
		ApprovalProvider Provider         `json:"approvalProvider,omitempty"`
		ApprovalTx       *TxData          `json:"bridgeApprovalTx,omitempty"`
	}
	return json.Marshal(wire(a))
}

// BridgeResponse is the orchestrator's result: which provider answered
// and what the caller must do next.
type BridgeResponse struct {
	Provider     Provider     `json:"provider"`
	BridgeAction BridgeAction `json:"bridgeAction"`
}

// Validate checks the structural invariants TxData promises: `to` is a
// 20-byte hex address and `data` is even-length hex.
func (t TxData) Validate() error {
	if len(t.To) != 42 || t.To[:2] != "0x" {
		return fmt.Errorf("txdata: to is not a 20-byte hex address: %q", t.To)
	}
	if _, err := hex.DecodeString(t.To[2:]); err != nil {
		return fmt.Errorf("txdata: to is not a 20-byte hex address: %q", t.To)
	}
	data := t.Data
	if len(data) >= 2 && data[:2] == "0x" {
		data = data[2:]
	}
	if len(data)%2 != 0 {
		return fmt.Errorf("txdata: data is not even-length hex")
	}
	if _, err := hex.DecodeString(data); err != nil {
		return fmt.Errorf("txdata: data is not even-length hex")
	}
	return nil
}
