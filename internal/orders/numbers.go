package orders

import (
	"context"
	"fmt"
	"time"
)

const (
	txnPrefix   = "TXN"
	orderPrefix = "ORD"

	seqTransactions = "transactions"
	seqOrders       = "orders"
)

// Sequencer hands out monotonically increasing per-day sequence numbers.
// The Redis client satisfies this.
type Sequencer interface {
	NextSequence(ctx context.Context, name, day string) (int64, error)
}

// NumberGenerator mints human-readable transaction and order numbers of the
// form PREFIX + yyyymmdd + zero-padded daily sequence. Uniqueness comes from
// the sequencer, not from retry-on-collision.
type NumberGenerator struct {
	seq Sequencer
	now func() time.Time
}

// NewNumberGenerator builds a generator backed by the provided sequencer.
func NewNumberGenerator(seq Sequencer) (*NumberGenerator, error) {
	if seq == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	return &NumberGenerator{seq: seq, now: time.Now}, nil
}

// NextTxnNo returns the next transaction number, e.g. TXN2025090100042.
func (g *NumberGenerator) NextTxnNo(ctx context.Context) (string, error) {
	return g.next(ctx, txnPrefix, seqTransactions)
}

// NextOrderNumber returns the next order number, e.g. ORD2025090100007.
func (g *NumberGenerator) NextOrderNumber(ctx context.Context) (string, error) {
	return g.next(ctx, orderPrefix, seqOrders)
}

func (g *NumberGenerator) next(ctx context.Context, prefix, name string) (string, error) {
	day := g.now().UTC().Format("20060102")
	n, err := g.seq.NextSequence(ctx, name, day)
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", name, err)
	}
	return fmt.Sprintf("%s%s%05d", prefix, day, n), nil
}
