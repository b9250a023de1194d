package abiutil

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackDepositV3_SelectorAndLength(t *testing.T) {
	data, err := PackDepositV3(DepositV3Params{
		Depositor:           common.HexToAddress("0x000007357111E4789005d4eBfF401a18D99770cE"),
		Recipient:           common.HexToAddress("0x000007357111E4789005d4eBfF401a18D99770cE"),
		InputToken:          common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		OutputToken:         common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		InputAmount:         big.NewInt(2000000),
		OutputAmount:        big.NewInt(1999000),
		DestinationChainID:  big.NewInt(42161),
		ExclusiveRelayer:    common.Address{},
		QuoteTimestamp:      1634160000,
		FillDeadline:        1634150120,
		ExclusivityDeadline: 0,
		Message:             nil,
	})
	require.NoError(t, err)
	// selector (4) + 11 static head words + 1 dynamic-bytes offset word
	// (12*32 = 384) + empty message tail (just its 32-byte length word).
	assert.Equal(t, 4+12*32+32, len(data))
	assert.Equal(t, "7b939232", common.Bytes2Hex(data[:4]))
}

func TestPackAllowance_Unpack_RoundTrip(t *testing.T) {
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	spender := common.HexToAddress("0x2222222222222222222222222222222222222222")

	packed, err := PackAllowance(owner, spender)
	require.NoError(t, err)
	assert.Equal(t, "dd62ed3e", common.Bytes2Hex(packed[:4]))

	want := big.NewInt(123456)
	encoded := common.LeftPadBytes(want.Bytes(), 32)
	got, err := UnpackAllowance(encoded)
	require.NoError(t, err)
	assert.Equal(t, 0, want.Cmp(got))
}

func TestPackApprove_Selector(t *testing.T) {
	spender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	packed, err := PackApprove(spender, MaxUint256())
	require.NoError(t, err)
	assert.Equal(t, "095ea7b3", common.Bytes2Hex(packed[:4]))
}

func TestMaxUint256(t *testing.T) {
	max := MaxUint256()
	want, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)
	assert.Equal(t, 0, max.Cmp(want))
}

func TestHasPermitSelector(t *testing.T) {
	withPermit := common.Hex2Bytes("6080604052" + "d505accf" + "6000")
	withoutPermit := common.Hex2Bytes("6080604052600052")
	assert.True(t, HasPermitSelector(withPermit))
	assert.False(t, HasPermitSelector(withoutPermit))
}
