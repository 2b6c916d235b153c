package ledger

import (
	"context"
	"fmt"
)

// Source supplies ledger snapshots to the engine.
type Source interface {
	Load(ctx context.Context) (Snapshot, error)
}

// FileSource reads a JSON snapshot from disk. ReceivablesPath and
// PayablesPath, when set, replace the snapshot's documents with tabular
// exports (.csv, .xlsx, .xls).
type FileSource struct {
	SnapshotPath    string
	ReceivablesPath string
	PayablesPath    string
}

func (f FileSource) Load(ctx context.Context) (Snapshot, error) {
	const op = "ledger.FileSource.Load"

	var s Snapshot
	if f.SnapshotPath != "" {
		var err error
		if s, err = LoadSnapshot(f.SnapshotPath); err != nil {
			return Snapshot{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	if f.ReceivablesPath != "" {
		imp, err := LoadDocuments(f.ReceivablesPath)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s: receivables: %w", op, err)
		}
		s.Receivables = imp.Documents
		s.SkippedRows += imp.SkippedRows
	}
	if f.PayablesPath != "" {
		imp, err := LoadDocuments(f.PayablesPath)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s: payables: %w", op, err)
		}
		s.Payables = imp.Documents
		s.SkippedRows += imp.SkippedRows
	}
	if s.Balances == nil {
		s.Balances = []BankBalance{}
	}
	return s, nil
}

// StaticSource serves a fixed snapshot.
type StaticSource struct {
	Snapshot Snapshot
}

func (s StaticSource) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot, nil
}
