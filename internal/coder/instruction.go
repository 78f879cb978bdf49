package coder

import (
	"encoding/binary"
	"fmt"

	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// Raydium AMM v4 instruction ids this pipeline cares about.
const (
	InstructionInitialize2 = 1
)

// Genesis payload layout: [0] instruction id, [1] nonce,
// [2..10) open time, [10..18) init coin amount, [18..26) init pc
// amount, all little-endian.
const (
	initialize2OpenTimeOffset = 2
	initialize2CoinOffset     = 10
	initialize2PcOffset       = 18
	initialize2MinLen         = 26
)

type Initialize2 struct {
	Nonce          byte
	OpenTime       uint64
	InitCoinAmount uint64
	InitPcAmount   uint64
}

// IsInitialize2 reports whether the payload carries the pool-genesis
// instruction. Empty payloads are not an error here; most instructions
// on the program are unrelated.
func IsInitialize2(data []byte) bool {
	return len(data) > 0 && data[0] == InstructionInitialize2
}

// DecodeInitialize2 extracts the raw initial reserves from a genesis
// payload. Payloads shorter than 26 bytes are malformed.
func DecodeInitialize2(data []byte) (Initialize2, error) {
	if len(data) < initialize2MinLen {
		return Initialize2{}, fmt.Errorf("%w: initialize2 payload is %d bytes, need %d", types.ErrDecode, len(data), initialize2MinLen)
	}

	return Initialize2{
		Nonce:          data[1],
		OpenTime:       binary.LittleEndian.Uint64(data[initialize2OpenTimeOffset:]),
		InitCoinAmount: binary.LittleEndian.Uint64(data[initialize2CoinOffset:]),
		InitPcAmount:   binary.LittleEndian.Uint64(data[initialize2PcOffset:]),
	}, nil
}
