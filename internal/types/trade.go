package types

import "github.com/gagliardetto/solana-go"

type Trade struct {
	AmmId     *solana.PublicKey `json:"ammId"`
	Mint      *solana.PublicKey `json:"mint"`
	Action    string            `json:"action"`
	Amount    string            `json:"amount"`
	Signature string            `json:"signature"`
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
}
