package feedback

import "time"

// Stats aggregates the feedback log for the monitoring endpoint: how often
// clinicians confirm, upgrade, downgrade or reject predictions, overall and
// per predicted gravity level.
type Stats struct {
	Total          int                     `json:"total_feedback"`
	AccuracyRate   float64                 `json:"accuracy_rate"`
	UpgradeRate    float64                 `json:"upgrade_rate"`
	DowngradeRate  float64                 `json:"downgrade_rate"`
	DisagreeRate   float64                 `json:"disagree_rate"`
	ByGravityLevel map[string]map[Kind]int `json:"by_gravity_level"`
	PeriodStart    time.Time               `json:"period_start,omitempty"`
	PeriodEnd      time.Time               `json:"period_end,omitempty"`
}

// Stats computes aggregates over records at or after since (zero time means
// the whole log).
func (l *Log) Stats(since time.Time) (*Stats, error) {
	recs, err := l.Records(since)
	if err != nil {
		return nil, err
	}

	s := &Stats{
		ByGravityLevel: make(map[string]map[Kind]int),
		PeriodStart:    since,
		PeriodEnd:      time.Now(),
	}

	counts := map[Kind]int{}
	for i := range recs {
		r := &recs[i]
		counts[r.Kind]++

		level := r.OriginalGravity.String()
		if s.ByGravityLevel[level] == nil {
			s.ByGravityLevel[level] = map[Kind]int{}
		}
		s.ByGravityLevel[level][r.Kind]++
	}

	s.Total = len(recs)
	if s.Total > 0 {
		n := float64(s.Total)
		s.AccuracyRate = float64(counts[KindCorrect]) / n
		s.UpgradeRate = float64(counts[KindUpgrade]) / n
		s.DowngradeRate = float64(counts[KindDowngrade]) / n
		s.DisagreeRate = float64(counts[KindDisagree]) / n
	}
	return s, nil
}
