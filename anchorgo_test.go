package anchorgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusterByName(t *testing.T) {
	assert.Equal(t, MainnetBeta, ClusterByName("mainnet-beta"))
	assert.Equal(t, MainnetBeta, ClusterByName("mainnet"))
	assert.Equal(t, Devnet, ClusterByName("devnet"))
	assert.Equal(t, Testnet, ClusterByName("testnet"))
	assert.Equal(t, Localnet, ClusterByName("localnet"))
	assert.Equal(t, Localnet, ClusterByName("localhost"))
}

func TestClusterByName_CustomURL(t *testing.T) {
	c := ClusterByName("https://rpc.example.com")
	assert.Equal(t, "https://rpc.example.com", c.RPC)
	assert.Empty(t, c.WS)
}
