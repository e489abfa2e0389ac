package dashboard

import (
	"encoding/json"
	"fmt"
	"io"

	"decisiondesk/internal/record"
	"decisiondesk/internal/store"
)

// ExportJSON writes the collection as a pretty-printed JSON array, the
// same shape the slot stores.
func (b *Dashboard) ExportJSON(w io.Writer) error {
	records := b.records
	if records == nil {
		records = []record.Decision{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ImportResult describes what an import did (or, for a dry run, would do).
type ImportResult struct {
	Added   int
	Updated int
	Removed int
	Diff    string
}

// ImportJSON reads a JSON array of decisions and folds it into the
// collection. With replace set the incoming snapshot supplants everything;
// otherwise records merge by id, incoming winning, and new records go to
// the front. Unlike the load path, a malformed import file is a caller
// error and is reported as one. With dryRun the collection and slot are
// left untouched and only the result's diff is produced.
func (b *Dashboard) ImportJSON(r io.Reader, replace, dryRun bool) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read import: %w", err)
	}
	incoming, err := store.ParseSnapshot(data)
	if err != nil {
		return ImportResult{}, err
	}

	var next []record.Decision
	res := ImportResult{}
	if replace {
		next = incoming
		existing := make(map[string]struct{}, len(b.records))
		for _, d := range b.records {
			existing[d.ID] = struct{}{}
		}
		for _, d := range incoming {
			if _, ok := existing[d.ID]; ok {
				res.Updated++
				delete(existing, d.ID)
			} else {
				res.Added++
			}
		}
		res.Removed = len(existing)
	} else {
		byID := make(map[string]record.Decision, len(incoming))
		for _, d := range incoming {
			byID[d.ID] = d
		}
		var fresh []record.Decision
		merged := make([]record.Decision, 0, len(b.records)+len(incoming))
		for _, d := range b.records {
			if in, ok := byID[d.ID]; ok {
				merged = append(merged, in)
				delete(byID, d.ID)
				res.Updated++
			} else {
				merged = append(merged, d)
			}
		}
		// preserve incoming order for records not seen before
		for _, d := range incoming {
			if _, ok := byID[d.ID]; ok {
				fresh = append(fresh, d)
				res.Added++
			}
		}
		next = append(fresh, merged...)
	}

	diff, err := store.DiffSnapshots(b.records, next)
	if err != nil {
		return ImportResult{}, err
	}
	res.Diff = diff

	if dryRun {
		return res, nil
	}
	if err := b.mutate(func([]record.Decision) []record.Decision { return next }); err != nil {
		return ImportResult{}, err
	}
	return res, nil
}
