package metrics

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// StageSummary aggregates the samples of one stage.
type StageSummary struct {
	Stage  Stage
	Count  int
	Total  time.Duration
	Mean   time.Duration
	StdDev time.Duration
	Max    time.Duration
}

// Summary holds one StageSummary per stage with samples, in Stages order.
type Summary []StageSummary

// Summary aggregates the collected samples.
func (t *Timings) Summary() Summary {
	var out Summary
	for _, stage := range Stages {
		samples := t.Samples(stage)
		if len(samples) == 0 {
			continue
		}
		out = append(out, summarize(stage, samples))
	}
	return out
}

func summarize(stage Stage, samples []time.Duration) StageSummary {
	values := make([]float64, len(samples))
	s := StageSummary{Stage: stage, Count: len(samples)}
	for i, d := range samples {
		values[i] = float64(d)
		s.Total += d
		s.Max = max(s.Max, d)
	}

	mean, std := stat.MeanStdDev(values, nil)
	s.Mean = time.Duration(mean)
	if len(values) > 1 && !math.IsNaN(std) {
		s.StdDev = time.Duration(std)
	}
	return s
}

// Get returns the summary for stage, if it has samples.
func (s Summary) Get(stage Stage) (StageSummary, bool) {
	for _, ss := range s {
		if ss.Stage == stage {
			return ss, true
		}
	}
	return StageSummary{}, false
}

// WriteTo prints one "<Stage> Time: <seconds>." line per stage.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, ss := range s {
		n, err := fmt.Fprintf(w, "%s Time: %f.\n", ss.Stage, ss.Total.Seconds())
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Log emits one structured entry per stage.
func (s Summary) Log(logger logrus.FieldLogger) {
	for _, ss := range s {
		logger.WithFields(logrus.Fields{
			"stage":   string(ss.Stage),
			"count":   ss.Count,
			"total":   ss.Total.String(),
			"mean":    ss.Mean.String(),
			"std_dev": ss.StdDev.String(),
			"max":     ss.Max.String(),
		}).Info("Stage timing")
	}
}
