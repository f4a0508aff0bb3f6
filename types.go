// Package muleguard implements a deterministic financial-transaction graph
// analyzer targeting three money-muling patterns: circular fund routing,
// smurfing, and layered shell networks.
package muleguard

import "time"

// Transaction is an immutable input record: a single directed transfer
// between two account identifiers.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	SenderID      string    `json:"sender_id"`
	ReceiverID    string    `json:"receiver_id"`
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`

	// timestampValid is false when the caller could not parse Timestamp to a
	// finite moment; such a transaction still contributes to adjacency and
	// aggregate statistics but is omitted from temporal windowing (spec §7).
	timestampValid bool
}

// NewTransaction constructs a Transaction with a known-valid timestamp.
func NewTransaction(transactionID, senderID, receiverID string, amount float64, timestamp time.Time) Transaction {
	return Transaction{
		TransactionID:  transactionID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Amount:         amount,
		Timestamp:      timestamp,
		timestampValid: true,
	}
}

// NewTransactionWithInvalidTimestamp constructs a Transaction whose
// timestamp could not be parsed by the caller (spec §7): it still
// contributes to adjacency and aggregate statistics but is omitted from
// temporal windowing. placeholder is echoed verbatim in edge projection.
func NewTransactionWithInvalidTimestamp(transactionID, senderID, receiverID string, amount float64, placeholder time.Time) Transaction {
	return Transaction{
		TransactionID:  transactionID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Amount:         amount,
		Timestamp:      placeholder,
		timestampValid: false,
	}
}

// AccountStats holds derived per-account aggregates, keyed by account ID.
type AccountStats struct {
	TotalSent       float64
	TotalReceived   float64
	SendCount       int
	ReceiveCount    int
	UniqueSenders   *orderedSet
	UniqueReceivers *orderedSet

	// SentAmounts/ReceivedAmounts retain individual amounts in transaction
	// order, needed only by the legitimacy filter's coefficient-of-variation
	// signatures (spec §4.1 rules 2-3).
	SentAmounts     []float64
	ReceivedAmounts []float64
}

// TotalTransactions is send_count + receive_count (spec §3).
func (s *AccountStats) TotalTransactions() int {
	return s.SendCount + s.ReceiveCount
}

// FlowRatio is min(sent, received) / max(sent, received), or 0 if either
// side is zero (spec §4.1).
func (s *AccountStats) FlowRatio() float64 {
	if s.TotalSent == 0 || s.TotalReceived == 0 {
		return 0
	}
	if s.TotalSent < s.TotalReceived {
		return s.TotalSent / s.TotalReceived
	}
	return s.TotalReceived / s.TotalSent
}

// PatternLabel is a string drawn from the closed set defined in spec §3.
type PatternLabel string

const (
	PatternCycle3          PatternLabel = "cycle_length_3"
	PatternCycle4          PatternLabel = "cycle_length_4"
	PatternCycle5          PatternLabel = "cycle_length_5"
	PatternFanIn           PatternLabel = "fan_in"
	PatternFanOut          PatternLabel = "fan_out"
	PatternShellNetwork    PatternLabel = "shell_network"
	PatternLegitimateBiz   PatternLabel = "legitimate_business"
)

// CycleLengthPattern maps a cycle's member count to its pattern label.
func CycleLengthPattern(length int) PatternLabel {
	switch length {
	case 3:
		return PatternCycle3
	case 4:
		return PatternCycle4
	case 5:
		return PatternCycle5
	default:
		return PatternLabel("")
	}
}

// RingPatternType is the closed pattern_type enum for assembled rings.
type RingPatternType string

const (
	RingTypeCycle        RingPatternType = "cycle"
	RingTypeFanIn        RingPatternType = "fan_in"
	RingTypeFanOut       RingPatternType = "fan_out"
	RingTypeShellNetwork RingPatternType = "shell_network"
)

// Ring is a detected pattern instance (spec §3).
type Ring struct {
	RingID         string          `json:"ring_id"`
	PatternType    RingPatternType `json:"pattern_type"`
	MemberAccounts []string        `json:"member_accounts"`
	RiskScore      float64         `json:"risk_score"`
}

// SuspiciousAccount is a ring-bearing account with its composite score.
type SuspiciousAccount struct {
	AccountID        string         `json:"account_id"`
	SuspicionScore   float64        `json:"suspicion_score"`
	DetectedPatterns []PatternLabel `json:"detected_patterns"`
	RingID           string         `json:"ring_id"`
}

// Node is a projection record for every account in the pre-filter universe.
type Node struct {
	ID               string         `json:"id"`
	Suspicious       bool           `json:"suspicious"`
	RingIDs          []string       `json:"ring_ids"`
	Patterns         []PatternLabel `json:"patterns"`
	TotalSent        float64        `json:"total_sent"`
	TotalReceived    float64        `json:"total_received"`
	TransactionCount int            `json:"transaction_count"`
	SuspicionScore   float64        `json:"suspicion_score"`
}

// Edge echoes one original transaction unchanged.
type Edge struct {
	Source        string    `json:"source"`
	Target        string    `json:"target"`
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	TransactionID string    `json:"transaction_id"`
}

// Summary holds the batch-level counters of spec §6.
type Summary struct {
	TotalAccountsAnalyzed      int     `json:"total_accounts_analyzed"`
	SuspiciousAccountsFlagged  int     `json:"suspicious_accounts_flagged"`
	FraudRingsDetected         int     `json:"fraud_rings_detected"`
	LegitimateAccountsFiltered int     `json:"legitimate_accounts_filtered"`
	ProcessingTimeSeconds      float64 `json:"processing_time_seconds"`
}

// AnalysisResult is the JSON-compatible output contract of Analyze (spec §6).
type AnalysisResult struct {
	SuspiciousAccounts []SuspiciousAccount `json:"suspicious_accounts"`
	FraudRings         []Ring              `json:"fraud_rings"`
	Summary            Summary             `json:"summary"`
	Nodes              []Node              `json:"nodes"`
	Edges              []Edge              `json:"edges"`
}
