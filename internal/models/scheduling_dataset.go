package models

// SchedulingDataset is the complete, immutable snapshot of scheduling state
// needed for one generation run. It is built once per run by the dataset
// repository and handed by reference to the eligibility checker and the
// assignment generator; nothing mutates it afterwards. There is no lazy or
// per-item query path: if a key is absent the answer is simply "no rows".
type SchedulingDataset struct {
	completions     map[string][]CompletionRecord
	scheduled       map[string][]ScheduledPM
	uncompleted     map[datasetKey][]ScheduledPM
	nextAnnual      map[string]string
	customTemplates map[datasetKey]struct{}
}

type datasetKey struct {
	BFMNo  string
	PMType PMType
}

// NewSchedulingDataset assembles a dataset from pre-grouped rows.
// Completion lists are expected newest-first; uncompleted lists are the up
// to five most recent prior-week Scheduled rows per (equipment, cadence).
func NewSchedulingDataset(
	completions map[string][]CompletionRecord,
	scheduled map[string][]ScheduledPM,
	uncompleted map[string]map[PMType][]ScheduledPM,
	nextAnnual map[string]string,
	templates map[string][]PMType,
) *SchedulingDataset {
	ds := &SchedulingDataset{
		completions:     completions,
		scheduled:       scheduled,
		uncompleted:     make(map[datasetKey][]ScheduledPM),
		nextAnnual:      nextAnnual,
		customTemplates: make(map[datasetKey]struct{}),
	}
	if ds.completions == nil {
		ds.completions = map[string][]CompletionRecord{}
	}
	if ds.scheduled == nil {
		ds.scheduled = map[string][]ScheduledPM{}
	}
	if ds.nextAnnual == nil {
		ds.nextAnnual = map[string]string{}
	}
	for bfmNo, byType := range uncompleted {
		for pmType, rows := range byType {
			ds.uncompleted[datasetKey{bfmNo, pmType}] = rows
		}
	}
	for bfmNo, types := range templates {
		for _, pmType := range types {
			ds.customTemplates[datasetKey{bfmNo, pmType}] = struct{}{}
		}
	}
	return ds
}

// RecentCompletions returns the completion history for an asset,
// newest-first, within the load window.
func (d *SchedulingDataset) RecentCompletions(bfmNo string) []CompletionRecord {
	return d.completions[bfmNo]
}

// ScheduledPMs returns rows already placed on the target week for an asset.
func (d *SchedulingDataset) ScheduledPMs(bfmNo string) []ScheduledPM {
	return d.scheduled[bfmNo]
}

// UncompletedSchedules returns prior-week rows still marked Scheduled for
// the (asset, cadence) pair, most recent week first.
func (d *SchedulingDataset) UncompletedSchedules(bfmNo string, pmType PMType) []ScheduledPM {
	return d.uncompleted[datasetKey{bfmNo, pmType}]
}

// NextAnnualDate returns the explicit next-annual-PM date string for the
// asset, or empty when none is recorded.
func (d *SchedulingDataset) NextAnnualDate(bfmNo string) string {
	return d.nextAnnual[bfmNo]
}

// HasCustomTemplate reports whether a bespoke PM procedure exists for the
// (asset, cadence) pair.
func (d *SchedulingDataset) HasCustomTemplate(bfmNo string, pmType PMType) bool {
	_, ok := d.customTemplates[datasetKey{bfmNo, pmType}]
	return ok
}

// CompletionCount is used by idempotence checks and debug logging.
func (d *SchedulingDataset) CompletionCount() int {
	total := 0
	for _, rows := range d.completions {
		total += len(rows)
	}
	return total
}
