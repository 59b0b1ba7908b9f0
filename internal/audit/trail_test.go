package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"budgetledger/internal/amqp"
)

func TestTrailAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "audit.jsonl")

	trail, err := OpenTrail(path)
	if err != nil {
		t.Fatalf("open trail: %v", err)
	}

	events := []*amqp.TransactionEventMessage{
		amqp.NewTransactionEvent("alice", 1, amqp.ActionCreated),
		amqp.NewTransactionEvent("alice", 2, amqp.ActionCreated),
		amqp.NewTransactionEvent("alice", 1, amqp.ActionDeleted),
	}
	for _, ev := range events {
		if err := trail.Record(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := trail.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	var got []amqp.TransactionEventMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var msg amqp.TransactionEventMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		got = append(got, msg)
	}

	if len(got) != len(events) {
		t.Fatalf("got %d lines, want %d", len(got), len(events))
	}
	if got[2].Action != amqp.ActionDeleted || got[2].TransactionID != 1 {
		t.Fatalf("last entry %+v", got[2])
	}
}

func TestTrailAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for i := 0; i < 2; i++ {
		trail, err := OpenTrail(path)
		if err != nil {
			t.Fatalf("open trail: %v", err)
		}
		if err := trail.Record(amqp.NewTransactionEvent("bob", int64(i+1), amqp.ActionCreated)); err != nil {
			t.Fatalf("record: %v", err)
		}
		trail.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("got %d lines, want 2", lines)
	}
}
