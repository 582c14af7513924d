package orders

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSequencer struct {
	counts map[string]int64
	err    error
}

func (s *stubSequencer) NextSequence(_ context.Context, name, day string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	key := name + ":" + day
	s.counts[key]++
	return s.counts[key], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextTxnNoFormat(t *testing.T) {
	gen, err := NewNumberGenerator(&stubSequencer{})
	if err != nil {
		t.Fatalf("NewNumberGenerator: %v", err)
	}
	gen.now = fixedClock(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))

	got, err := gen.NextTxnNo(context.Background())
	if err != nil {
		t.Fatalf("NextTxnNo: %v", err)
	}
	if got != "TXN2025090100001" {
		t.Fatalf("unexpected txn no %q", got)
	}

	got, err = gen.NextTxnNo(context.Background())
	if err != nil {
		t.Fatalf("NextTxnNo: %v", err)
	}
	if got != "TXN2025090100002" {
		t.Fatalf("expected incremented txn no, got %q", got)
	}
}

func TestOrderAndTxnSequencesAreIndependent(t *testing.T) {
	gen, err := NewNumberGenerator(&stubSequencer{})
	if err != nil {
		t.Fatalf("NewNumberGenerator: %v", err)
	}
	gen.now = fixedClock(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))

	if _, err := gen.NextTxnNo(context.Background()); err != nil {
		t.Fatalf("NextTxnNo: %v", err)
	}
	got, err := gen.NextOrderNumber(context.Background())
	if err != nil {
		t.Fatalf("NextOrderNumber: %v", err)
	}
	if got != "ORD2025090100001" {
		t.Fatalf("order sequence should start fresh, got %q", got)
	}
}

func TestSequenceResetsPerDay(t *testing.T) {
	seq := &stubSequencer{}
	gen, err := NewNumberGenerator(seq)
	if err != nil {
		t.Fatalf("NewNumberGenerator: %v", err)
	}

	gen.now = fixedClock(time.Date(2025, 9, 1, 23, 59, 0, 0, time.UTC))
	if _, err := gen.NextTxnNo(context.Background()); err != nil {
		t.Fatalf("NextTxnNo: %v", err)
	}

	gen.now = fixedClock(time.Date(2025, 9, 2, 0, 1, 0, 0, time.UTC))
	got, err := gen.NextTxnNo(context.Background())
	if err != nil {
		t.Fatalf("NextTxnNo: %v", err)
	}
	if got != "TXN2025090200001" {
		t.Fatalf("expected day rollover to reset sequence, got %q", got)
	}
}

func TestNextTxnNoPropagatesSequencerError(t *testing.T) {
	gen, err := NewNumberGenerator(&stubSequencer{err: errors.New("redis down")})
	if err != nil {
		t.Fatalf("NewNumberGenerator: %v", err)
	}
	if _, err := gen.NextTxnNo(context.Background()); err == nil {
		t.Fatal("expected error from sequencer")
	}
}

func TestNewNumberGeneratorRequiresSequencer(t *testing.T) {
	if _, err := NewNumberGenerator(nil); err == nil {
		t.Fatal("expected error for nil sequencer")
	}
}
