package metrics

import "github.com/prometheus/client_golang/prometheus"

// StatusMetrics exports the latest open/closed verdicts.
type StatusMetrics struct {
	verdicts *prometheus.GaugeVec
}

// NewStatusMetrics registers the restaurant status gauge.
func NewStatusMetrics(reg prometheus.Registerer) *StatusMetrics {
	if reg == nil {
		return &StatusMetrics{}
	}
	verdicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "restaurants_by_status",
		Help: "Number of restaurants per status verdict and closed reason at the last evaluation.",
	}, []string{"verdict", "reason"})
	reg.MustRegister(verdicts)
	return &StatusMetrics{verdicts: verdicts}
}

// StatusCount is one gauge sample.
type StatusCount struct {
	Verdict string
	Reason  string
	Count   int
}

// Set replaces all gauge samples with counts.
func (s *StatusMetrics) Set(counts []StatusCount) {
	if s == nil || s.verdicts == nil {
		return
	}
	s.verdicts.Reset()
	for _, c := range counts {
		reason := c.Reason
		if reason == "" {
			reason = "none"
		}
		s.verdicts.WithLabelValues(normalizeLabel(c.Verdict), reason).Set(float64(c.Count))
	}
}
