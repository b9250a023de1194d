package entities

// AllowanceActionKind discriminates the Allowance Engine's decision.
type AllowanceActionKind string

const (
	AllowanceOk               AllowanceActionKind = "ok"
	AllowancePermitSignature  AllowanceActionKind = "permitSignature"
	AllowancePermit2Signature AllowanceActionKind = "permit2Signature"
	AllowancePermit2Tx        AllowanceActionKind = "permit2Tx"
	AllowanceApprovalTx       AllowanceActionKind = "approvalTx"
)

// AllowanceAction is the Allowance Engine's output: either the caller
// may proceed directly (Ok), or must sign/submit something first.
type AllowanceAction struct {
	Kind             AllowanceActionKind
	PermitSignature  string
	Permit2Signature string
	Permit2Tx        *TxData
	ApprovalTx       *TxData
}

func AllowanceActionOk() AllowanceAction {
	return AllowanceAction{Kind: AllowanceOk}
}

func AllowanceActionPermitSignature(typedData string) AllowanceAction {
	return AllowanceAction{Kind: AllowancePermitSignature, PermitSignature: typedData}
}

func AllowanceActionPermit2Signature(typedData string) AllowanceAction {
	return AllowanceAction{Kind: AllowancePermit2Signature, Permit2Signature: typedData}
}

func AllowanceActionPermit2Tx(tx TxData, permit2TypedData string) AllowanceAction {
	return AllowanceAction{Kind: AllowancePermit2Tx, Permit2Tx: &tx, Permit2Signature: permit2TypedData}
}

func AllowanceActionApprovalTx(tx TxData) AllowanceAction {
	return AllowanceAction{Kind: AllowanceApprovalTx, ApprovalTx: &tx}
}
