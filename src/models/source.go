package models

// SourceKey identifies one export file of the archive.
type SourceKey string

const (
	SourceReadiness SourceKey = "readiness"
	SourceSleep     SourceKey = "sleep"
	SourceHeartRate SourceKey = "hr"
	SourceSpO2      SourceKey = "spo2"
	SourceBedtime   SourceKey = "bedtime"
	SourceActivity  SourceKey = "activity"
	SourceSleepFull SourceKey = "sleep_full"
)

// AllSources lists every source key in load order.
var AllSources = []SourceKey{
	SourceReadiness,
	SourceSleep,
	SourceHeartRate,
	SourceSpO2,
	SourceBedtime,
	SourceActivity,
	SourceSleepFull,
}

// -----------------------------------------------------------------------------

// MRawTable is one CSV export as read from disk, before any typing.
type MRawTable struct {
	Source  SourceKey  `json:"source"`
	Path    string     `json:"path"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	index map[string]int
}

// NewRawTable builds a table and indexes its header.
func NewRawTable(source SourceKey, path string, columns []string, rows [][]string) *MRawTable {
	t := &MRawTable{
		Source:  source,
		Path:    path,
		Columns: columns,
		Rows:    rows,
	}
	t.buildIndex()
	return t
}

func (t *MRawTable) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// HasColumn reports whether the header carries the column at all.
func (t *MRawTable) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	if t.index == nil {
		t.buildIndex()
	}
	_, ok := t.index[name]
	return ok
}

// Value returns the raw cell. ok is false when the column is absent or the
// row is shorter than the header; an empty cell is returned as "" with ok true.
func (t *MRawTable) Value(row int, column string) (string, bool) {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	if t.index == nil {
		t.buildIndex()
	}
	idx, ok := t.index[column]
	if !ok || idx >= len(t.Rows[row]) {
		return "", false
	}
	return t.Rows[row][idx], true
}

// Len returns the number of records.
func (t *MRawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// MSourceTables maps each source to its raw table. A missing key or a nil
// value both mean the source is absent.
type MSourceTables map[SourceKey]*MRawTable
