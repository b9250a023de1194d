// Package abiutil holds the parsed ABI fragments and packing helpers
// for the fixed set of function signatures the aggregator speaks:
// Across's depositV3, and the ERC-20 allowance/approve/permit trio.
package abiutil

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	depositV3ABI = mustParseABI(`[
		{"inputs":[
			{"internalType":"address","name":"depositor","type":"address"},
			{"internalType":"address","name":"recipient","type":"address"},
			{"internalType":"address","name":"inputToken","type":"address"},
			{"internalType":"address","name":"outputToken","type":"address"},
			{"internalType":"uint256","name":"inputAmount","type":"uint256"},
			{"internalType":"uint256","name":"outputAmount","type":"uint256"},
			{"internalType":"uint256","name":"destinationChainId","type":"uint256"},
			{"internalType":"address","name":"exclusiveRelayer","type":"address"},
			{"internalType":"uint32","name":"quoteTimestamp","type":"uint32"},
			{"internalType":"uint32","name":"fillDeadline","type":"uint32"},
			{"internalType":"uint32","name":"exclusivityDeadline","type":"uint32"},
			{"internalType":"bytes","name":"message","type":"bytes"}
		],"name":"depositV3","outputs":[],"stateMutability":"payable","type":"function"}
	]`)

	erc20ABI = mustParseABI(`[
		{"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"address","name":"spender","type":"address"}],"name":"allowance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"spender","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"approve","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"address","name":"spender","type":"address"},{"internalType":"uint256","name":"value","type":"uint256"},{"internalType":"uint256","name":"deadline","type":"uint256"},{"internalType":"uint8","name":"v","type":"uint8"},{"internalType":"bytes32","name":"r","type":"bytes32"},{"internalType":"bytes32","name":"s","type":"bytes32"}],"name":"permit","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`)
)

// PermitSelectorHex is the EIP-2612 permit function selector, used as
// a byte-pattern probe against a token's deployed bytecode.
const PermitSelectorHex = "d505accf"

// MaxUint256 is 2^256 - 1, used by ApproveMax.
func MaxUint256() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}

// DepositV3Params holds the arguments to Across's depositV3 in the
// exact order and types spec'd by its on-chain signature.
type DepositV3Params struct {
	Depositor           common.Address
	Recipient           common.Address
	InputToken          common.Address
	OutputToken         common.Address
	InputAmount         *big.Int
	OutputAmount        *big.Int
	DestinationChainID  *big.Int
	ExclusiveRelayer    common.Address
	QuoteTimestamp      uint32
	FillDeadline        uint32
	ExclusivityDeadline uint32
	Message             []byte
}

// PackDepositV3 ABI-encodes a depositV3 call.
func PackDepositV3(p DepositV3Params) ([]byte, error) {
	message := p.Message
	if message == nil {
		message = []byte{}
	}
	return depositV3ABI.Pack("depositV3",
		p.Depositor,
		p.Recipient,
		p.InputToken,
		p.OutputToken,
		p.InputAmount,
		p.OutputAmount,
		p.DestinationChainID,
		p.ExclusiveRelayer,
		p.QuoteTimestamp,
		p.FillDeadline,
		p.ExclusivityDeadline,
		message,
	)
}

// PackAllowance ABI-encodes allowance(owner, spender).
func PackAllowance(owner, spender common.Address) ([]byte, error) {
	return erc20ABI.Pack("allowance", owner, spender)
}

// UnpackAllowance decodes the uint256 return value of allowance.
func UnpackAllowance(data []byte) (*big.Int, error) {
	out, err := erc20ABI.Unpack("allowance", data)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// PackApprove ABI-encodes approve(spender, amount).
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("approve", spender, amount)
}

// HasPermitSelector reports whether deployed bytecode contains the
// EIP-2612 permit function selector as a byte pattern.
func HasPermitSelector(bytecode []byte) bool {
	return strings.Contains(common.Bytes2Hex(bytecode), PermitSelectorHex)
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
