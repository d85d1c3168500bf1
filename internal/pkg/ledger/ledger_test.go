package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestIssue_WalksEveryStage(t *testing.T) {
	defer goleak.VerifyNone(t)

	var seen []Stage
	receipt, err := NewIssuer(Config{}).Issue(context.Background(), func(s Stage) {
		seen = append(seen, s)
	})
	require.NoError(t, err)

	assert.Equal(t, Stages, seen)
	assert.True(t, IsTxHash(receipt.TxHash), receipt.TxHash)
	assert.GreaterOrEqual(t, receipt.BlockNumber, int64(blockFloor))
	assert.Less(t, receipt.BlockNumber, int64(blockFloor+blockSpan))
	assert.False(t, receipt.ConfirmedAt.IsZero())
}

func TestIssue_NilCallback(t *testing.T) {
	_, err := NewIssuer(Config{SigningDelay: -time.Second}).Issue(context.Background(), nil)
	assert.NoError(t, err)
}

func TestIssue_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var seen []Stage
	issuer := NewIssuer(Config{PreparingDelay: time.Hour})

	done := make(chan error, 1)
	go func() {
		_, err := issuer.Issue(ctx, func(s Stage) { seen = append(seen, s) })
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("issue did not return after cancel")
	}
	assert.NotContains(t, seen, StageConfirmed)
}

func TestNewTxHash_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		h, err := NewTxHash()
		require.NoError(t, err)
		assert.Len(t, h, 66)
		assert.False(t, seen[h])
		seen[h] = true
	}
}

func TestStage(t *testing.T) {
	assert.True(t, StagePreparing.Valid())
	assert.True(t, StageFailed.Valid())
	assert.False(t, Stage("mining").Valid())
	assert.True(t, StageConfirmed.Terminal())
	assert.False(t, StageSigning.Terminal())
}

func TestParseReference(t *testing.T) {
	hash, err := NewTxHash()
	require.NoError(t, err)

	ref, ok := ParseReference(hash)
	require.True(t, ok)
	assert.Equal(t, hash, ref.TxHash)

	ref, ok = ParseReference(" 42 ")
	require.True(t, ok)
	assert.Equal(t, int64(42), ref.ID)

	_, ok = ParseReference("0xnothex")
	assert.False(t, ok)
	_, ok = ParseReference("-3")
	assert.False(t, ok)
}
