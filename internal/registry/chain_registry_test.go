package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgekit.backend/internal/config"
	"bridgekit.backend/internal/domain/entities"
)

func TestMain(m *testing.M) {
	Init(config.Load())
	m.Run()
}

func TestSupportedChains_ClosedEnumeration(t *testing.T) {
	chains := SupportedChains()
	assert.Len(t, chains, 4)
	assert.Contains(t, chains, uint32(1))
	assert.Contains(t, chains, uint32(42161))
	assert.Contains(t, chains, uint32(8453))
	assert.Contains(t, chains, uint32(7565164))
	assert.Equal(t, entities.ChainTypeSVM, chains[7565164].Type)
}

func TestSupportedChains_ReturnsACopy(t *testing.T) {
	chains := SupportedChains()
	delete(chains, uint32(1))
	chains2 := SupportedChains()
	assert.Contains(t, chains2, uint32(1))
}

func TestTryFromID(t *testing.T) {
	data, err := TryFromID(8453)
	require.NoError(t, err)
	assert.Equal(t, "base", data.Name)
	assert.Equal(t, entities.ChainTypeEVM, data.Type)

	_, err = TryFromID(999)
	assert.Error(t, err)
}

func TestIsSolana(t *testing.T) {
	assert.True(t, IsSolana(7565164))
	assert.False(t, IsSolana(1))
}
