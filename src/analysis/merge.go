package analysis

import (
	"sort"
	"time"

	"biometric-insights/src/models"
)

// Suffixes appended to colliding column names, per joined domain.
const (
	SuffixSleep    = "_sleep"
	SuffixActivity = "_activity"
)

// baseOrder is the priority in which a base domain is chosen.
var baseOrder = []models.SourceKey{
	models.SourceReadiness,
	models.SourceSleep,
	models.SourceActivity,
}

// -----------------------------------------------------------------------------

// columnSet keeps the ordered, de-duplicated list of merged column names.
type columnSet struct {
	names  []string
	fields []models.MColumn
	seen   map[string]struct{}
}

func newColumnSet() *columnSet {
	cs := &columnSet{seen: make(map[string]struct{})}
	cs.seen[colDay] = struct{}{}
	cs.names = append(cs.names, colDay)
	return cs
}

func (cs *columnSet) add(name string, source models.SourceKey, field string) {
	if _, ok := cs.seen[name]; ok {
		return
	}
	cs.seen[name] = struct{}{}
	cs.names = append(cs.names, name)
	cs.fields = append(cs.fields, models.MColumn{Name: name, Source: source, Field: field})
}

// join adds the columns of one domain, suffixing the names that collide.
func (cs *columnSet) join(source models.SourceKey, columns []string, suffix string) {
	for _, c := range columns {
		if _, collides := cs.seen[c]; collides {
			cs.add(c+suffix, source, c)
			continue
		}
		cs.add(c, source, c)
	}
}

// -----------------------------------------------------------------------------

// SelectBase returns the first present domain among readiness, sleep and
// activity.
func SelectBase(processed *models.MProcessedData) (models.SourceKey, bool) {
	if processed == nil {
		return "", false
	}
	for _, key := range baseOrder {
		if domainPresent(processed, key) {
			return key, true
		}
	}
	return "", false
}

func domainPresent(processed *models.MProcessedData, key models.SourceKey) bool {
	switch key {
	case models.SourceReadiness:
		return processed.Readiness != nil
	case models.SourceSleep:
		return processed.Sleep != nil
	case models.SourceActivity:
		return processed.Activity != nil
	case models.SourceSpO2:
		return processed.SpO2 != nil
	case models.SourceHeartRate:
		return processed.HeartRate != nil
	}
	return false
}

func domainColumns(processed *models.MProcessedData, key models.SourceKey) []string {
	cols := processed.Columns[key]
	if key != models.SourceActivity {
		return cols
	}
	allowed := make([]string, 0, len(ActivityAllowList))
	for _, c := range ActivityAllowList {
		if processed.HasColumn(models.SourceActivity, c) {
			allowed = append(allowed, c)
		}
	}
	return allowed
}

// -----------------------------------------------------------------------------

// Merge outer-joins readiness, sleep and activity on day and left-joins SpO2
// and heart rate. Rows come back sorted by day. The inputs are not modified.
func Merge(processed *models.MProcessedData) (*models.MTimeline, bool) {
	base, ok := SelectBase(processed)
	if !ok {
		return nil, false
	}

	rows := make(map[time.Time]*models.MTimelineRow)
	cols := newColumnSet()

	// Readiness, sleep and activity each contribute their dates.
	for _, key := range baseOrder {
		if !domainPresent(processed, key) {
			continue
		}
		switch key {
		case models.SourceReadiness:
			for i := range processed.Readiness.Rows {
				r := processed.Readiness.Rows[i]
				rowFor(rows, r.Day).Readiness = &r
			}
			cols.join(key, domainColumns(processed, key), "")
		case models.SourceSleep:
			for i := range processed.Sleep.Rows {
				r := processed.Sleep.Rows[i]
				rowFor(rows, r.Day).Sleep = &r
			}
			cols.join(key, domainColumns(processed, key), SuffixSleep)
		case models.SourceActivity:
			for i := range processed.Activity.Rows {
				summary := processed.Activity.Rows[i].Summary
				rowFor(rows, processed.Activity.Rows[i].Day).Activity = &summary
			}
			cols.join(key, domainColumns(processed, key), SuffixActivity)
		}
	}

	// SpO2 and heart rate never add dates.
	if processed.SpO2 != nil {
		for i := range processed.SpO2.Rows {
			r := processed.SpO2.Rows[i]
			if row, ok := rows[r.Day]; ok {
				row.SpO2 = &r
			}
		}
		cols.join(models.SourceSpO2, domainColumns(processed, models.SourceSpO2), "")
	}
	if processed.HeartRate != nil {
		for i := range processed.HeartRate.Rows {
			r := processed.HeartRate.Rows[i]
			if row, ok := rows[r.Day]; ok {
				row.HeartRate = &r
			}
		}
		cols.join(models.SourceHeartRate, domainColumns(processed, models.SourceHeartRate), "")
	}

	timeline := &models.MTimeline{
		Base:    base,
		Columns: cols.names,
		Fields:  cols.fields,
		Rows:    make([]models.MTimelineRow, 0, len(rows)),
	}
	for _, row := range rows {
		timeline.Rows = append(timeline.Rows, *row)
	}
	sort.Slice(timeline.Rows, func(i, j int) bool {
		return timeline.Rows[i].Day.Before(timeline.Rows[j].Day)
	})
	return timeline, true
}

func rowFor(rows map[time.Time]*models.MTimelineRow, day time.Time) *models.MTimelineRow {
	row, ok := rows[day]
	if !ok {
		row = &models.MTimelineRow{Day: day}
		rows[day] = row
	}
	return row
}

// -----------------------------------------------------------------------------

// RecentWindow returns the rows whose day is on or after the last day minus
// days. The timeline must already be sorted.
func RecentWindow(timeline *models.MTimeline, days int) *models.MTimeline {
	if timeline.Empty() {
		return nil
	}
	last := timeline.Latest().Day
	cutoff := last.AddDate(0, 0, -days)

	dayAxis := make([]time.Time, len(timeline.Rows))
	for i := range timeline.Rows {
		dayAxis[i] = timeline.Rows[i].Day
	}
	start := SearchDay(dayAxis, cutoff)

	recent := &models.MTimeline{
		Base:    timeline.Base,
		Columns: timeline.Columns,
		Fields:  timeline.Fields,
		Rows:    make([]models.MTimelineRow, len(timeline.Rows)-start),
	}
	copy(recent.Rows, timeline.Rows[start:])
	return recent
}
