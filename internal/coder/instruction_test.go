package coder

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genesisPayload(coin, pc uint64) []byte {
	data := make([]byte, 26)
	data[0] = InstructionInitialize2
	data[1] = 254
	binary.LittleEndian.PutUint64(data[2:], 1700000000)
	binary.LittleEndian.PutUint64(data[10:], coin)
	binary.LittleEndian.PutUint64(data[18:], pc)
	return data
}

func TestIsInitialize2(t *testing.T) {
	assert.True(t, IsInitialize2(genesisPayload(1, 1)))
	assert.False(t, IsInitialize2(nil))
	assert.False(t, IsInitialize2([]byte{}))
	assert.False(t, IsInitialize2([]byte{9, 1, 2}))
}

func TestDecodeInitialize2(t *testing.T) {
	ix, err := DecodeInitialize2(genesisPayload(2_000_000, 100_000_000_000))
	require.NoError(t, err)

	assert.Equal(t, byte(254), ix.Nonce)
	assert.Equal(t, uint64(1700000000), ix.OpenTime)
	assert.Equal(t, uint64(2_000_000), ix.InitCoinAmount)
	assert.Equal(t, uint64(100_000_000_000), ix.InitPcAmount)
}

func TestDecodeInitialize2IgnoresTrailingBytes(t *testing.T) {
	data := append(genesisPayload(7, 9), 0xde, 0xad, 0xbe, 0xef)

	ix, err := DecodeInitialize2(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), ix.InitCoinAmount)
	assert.Equal(t, uint64(9), ix.InitPcAmount)
}

func TestDecodeInitialize2ShortPayload(t *testing.T) {
	_, err := DecodeInitialize2(genesisPayload(1, 1)[:25])
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDecode))
}
