package repository

// UpsertOutcome classifies what a single upsert did to the store. MySQL's
// ON DUPLICATE KEY UPDATE reports one affected row for a fresh insert, two
// for an overwrite of an existing row, and zero when the rewrite changed
// nothing; INSERT IGNORE reports zero for a skipped duplicate. Callers count
// these separately instead of folding skips into an "inserted" total.
type UpsertOutcome int

const (
	// OutcomeInserted means a new row was created.
	OutcomeInserted UpsertOutcome = iota
	// OutcomeUpdated means an existing row was overwritten.
	OutcomeUpdated
	// OutcomeUnchanged means the key existed and nothing needed to change.
	OutcomeUnchanged
)

// String names the outcome for logs and progress reports.
func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// outcomeFromRows maps MySQL affected-row counts to an UpsertOutcome.
func outcomeFromRows(n int64) UpsertOutcome {
	switch n {
	case 1:
		return OutcomeInserted
	case 2:
		return OutcomeUpdated
	default:
		return OutcomeUnchanged
	}
}
