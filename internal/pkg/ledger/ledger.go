// Package ledger simulates anchoring a certificate on a blockchain. Nothing is
// actually written to a chain: the issuer walks through the usual transaction
// stages with configurable delays and hands back an opaque transaction hash.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Stage is one step of the simulated issuance.
type Stage string

const (
	StagePreparing    Stage = "preparing"
	StageSigning      Stage = "signing"
	StageBroadcasting Stage = "broadcasting"
	StageConfirming   Stage = "confirming"
	StageConfirmed    Stage = "confirmed"
	// StageFailed is recorded when issuance is interrupted.
	StageFailed Stage = "failed"
)

// Stages lists the issuance stages in order.
var Stages = []Stage{StagePreparing, StageSigning, StageBroadcasting, StageConfirming, StageConfirmed}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	if s == StageFailed {
		return true
	}
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further stage follows s.
func (s Stage) Terminal() bool {
	return s == StageConfirmed || s == StageFailed
}

// Config holds the time spent in each non-terminal stage.
type Config struct {
	PreparingDelay    time.Duration
	SigningDelay      time.Duration
	BroadcastingDelay time.Duration
	ConfirmingDelay   time.Duration
}

// DefaultConfig mirrors the pacing a user sees in the portal.
func DefaultConfig() Config {
	return Config{
		PreparingDelay:    800 * time.Millisecond,
		SigningDelay:      1200 * time.Millisecond,
		BroadcastingDelay: 1500 * time.Millisecond,
		ConfirmingDelay:   time.Second,
	}
}

// Receipt is the outcome of a confirmed issuance.
type Receipt struct {
	TxHash      string    `json:"txHash"`
	BlockNumber int64     `json:"blockNumber"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// Issuer runs simulated issuances.
type Issuer struct {
	delays map[Stage]time.Duration
}

// NewIssuer creates an issuer. Negative delays are treated as zero.
func NewIssuer(cfg Config) *Issuer {
	clamp := func(d time.Duration) time.Duration {
		if d < 0 {
			return 0
		}
		return d
	}
	return &Issuer{
		delays: map[Stage]time.Duration{
			StagePreparing:    clamp(cfg.PreparingDelay),
			StageSigning:      clamp(cfg.SigningDelay),
			StageBroadcasting: clamp(cfg.BroadcastingDelay),
			StageConfirming:   clamp(cfg.ConfirmingDelay),
		},
	}
}

// Issue walks through every stage, calling onStage as each one begins, and
// returns the receipt once confirmed. It stops early with ctx.Err() if ctx is
// cancelled. onStage may be nil.
func (i *Issuer) Issue(ctx context.Context, onStage func(Stage)) (Receipt, error) {
	if onStage == nil {
		onStage = func(Stage) {}
	}

	for _, stage := range Stages[:len(Stages)-1] {
		if err := ctx.Err(); err != nil {
			return Receipt{}, err
		}
		onStage(stage)
		if err := sleep(ctx, i.delays[stage]); err != nil {
			return Receipt{}, err
		}
	}

	hash, err := NewTxHash()
	if err != nil {
		return Receipt{}, fmt.Errorf("generate tx hash: %w", err)
	}
	receipt := Receipt{
		TxHash:      hash,
		BlockNumber: NewBlockNumber(),
		ConfirmedAt: time.Now().UTC(),
	}
	onStage(StageConfirmed)
	return receipt, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

// NewTxHash returns "0x" followed by 64 random lowercase hex digits.
func NewTxHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// IsTxHash reports whether s has the shape produced by NewTxHash.
func IsTxHash(s string) bool {
	return txHashPattern.MatchString(strings.ToLower(s))
}

const (
	blockFloor = 18_000_000
	blockSpan  = 1_000_000
)

// NewBlockNumber returns a plausible mainnet-sized block height.
func NewBlockNumber() int64 {
	return blockFloor + mrand.Int64N(blockSpan)
}

// Reference is a parsed verification lookup key: either a transaction hash or
// a numeric certificate ID.
type Reference struct {
	TxHash string
	ID     int64
}

// ParseReference interprets s as a transaction hash or a certificate ID.
func ParseReference(s string) (Reference, bool) {
	s = strings.TrimSpace(s)
	if IsTxHash(s) {
		return Reference{TxHash: strings.ToLower(s)}, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Reference{}, false
	}
	return Reference{ID: id}, true
}
