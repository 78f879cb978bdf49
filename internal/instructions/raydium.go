package instructions

import (
	"bytes"
	"encoding/binary"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

// RaydiumSwapInstruction is the fixed-in swap against an AMM v4 pool,
// borsh-encoded with instruction id 9.
type RaydiumSwapInstruction struct {
	bin.BaseVariant
	InAmount                uint64
	MinimumOutAmount        uint64
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

type SwapFixedInParams struct {
	InAmount         uint64
	MinimumOutAmount uint64
	Record           *types.PoolGenesisRecord
	TokenAccountIn   solana.PublicKey
	TokenAccountOut  solana.PublicKey
	Owner            solana.PublicKey
}

func (instruction *RaydiumSwapInstruction) ProgramID() solana.PublicKey {
	return instruction.programID
}

func (instruction *RaydiumSwapInstruction) Accounts() (out []*solana.AccountMeta) {
	return instruction.AccountMetaSlice
}

func (instruction *RaydiumSwapInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(instruction); err != nil {
		return nil, fmt.Errorf("unable to encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

func (instruction *RaydiumSwapInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	// Swap instruction is number 9
	err = encoder.WriteUint8(9)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(instruction.InAmount, binary.LittleEndian)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(instruction.MinimumOutAmount, binary.LittleEndian)
	if err != nil {
		return err
	}
	return nil
}

// MakeSwapFixedInInstruction lays out the ~18 pool and market accounts
// a swap touches, in program order, from the genesis record.
func MakeSwapFixedInInstruction(params *SwapFixedInParams) *RaydiumSwapInstruction {
	rec := params.Record

	ins := &RaydiumSwapInstruction{
		InAmount:         params.InAmount,
		MinimumOutAmount: params.MinimumOutAmount,
		programID:        rec.ProgramID,
		AccountMetaSlice: make(solana.AccountMetaSlice, 0),
	}

	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: ag_binary.TypeIDFromUint32(25, binary.LittleEndian),
	}

	ins.AccountMetaSlice = []*solana.AccountMeta{
		solana.Meta(solana.TokenProgramID).WRITE(),
		solana.Meta(rec.AmmID).WRITE(),
		solana.Meta(rec.Authority),
		solana.Meta(rec.OpenOrders).WRITE(),
		solana.Meta(rec.TargetOrders).WRITE(),
		solana.Meta(rec.BaseVault).WRITE(),
		solana.Meta(rec.QuoteVault).WRITE(),
		solana.Meta(rec.MarketProgramID),
		solana.Meta(rec.MarketID).WRITE(),
		solana.Meta(rec.MarketBids).WRITE(),
		solana.Meta(rec.MarketAsks).WRITE(),
		solana.Meta(rec.MarketEventQueue).WRITE(),
		solana.Meta(rec.MarketBaseVault).WRITE(),
		solana.Meta(rec.MarketQuoteVault).WRITE(),
		solana.Meta(rec.MarketAuthority),
		solana.Meta(params.TokenAccountIn).WRITE(),
		solana.Meta(params.TokenAccountOut).WRITE(),
		solana.Meta(params.Owner).SIGNER(),
	}

	return ins
}
