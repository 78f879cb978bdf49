package types

import "github.com/gagliardetto/solana-go"

// SessionStatus mirrors a watch session's lifecycle state into redis
// so operators can inspect live sessions without touching the watcher.
type SessionStatus struct {
	AmmId       *solana.PublicKey `json:"ammId"`
	RecordID    int64             `json:"recordId"`
	State       string            `json:"state"`
	TargetPrice float64           `json:"targetPrice"`
	LastUpdated int64             `json:"lastUpdated"`
}
