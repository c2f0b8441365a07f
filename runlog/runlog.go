// Package runlog records the per-iteration energy trajectory of a training
// run. Every run owns exactly one log, and logs are never merged.
package runlog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Record is one iteration's energy estimate.
type Record struct {
	Iter     int
	Energy   complex128
	Variance float64
}

// Log is the append-only trajectory of a single run.
type Log struct {
	Name    string
	Records []Record
}

// New creates an empty log for the named run.
func New(name string) *Log {
	return &Log{Name: name, Records: make([]Record, 0)}
}

// Append adds one iteration record.
func (l *Log) Append(iter int, energy complex128, variance float64) {
	l.Records = append(l.Records, Record{Iter: iter, Energy: energy, Variance: variance})
}

// jsonLog is the on-disk format: metrics keyed by name, each with an
// iteration axis and the mean decomposed into real and imaginary parts.
type jsonLog struct {
	Energy jsonMetric `json:"Energy"`
}

type jsonMetric struct {
	Iters    []int     `json:"iters"`
	Mean     jsonMean  `json:"Mean"`
	Variance []float64 `json:"Variance"`
}

type jsonMean struct {
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag"`
}

// Write persists the log as <name>.json under dir.
func (l *Log) Write(dir string) error {
	jl := jsonLog{}
	jl.Energy.Iters = make([]int, 0, len(l.Records))
	jl.Energy.Mean.Real = make([]float64, 0, len(l.Records))
	jl.Energy.Mean.Imag = make([]float64, 0, len(l.Records))
	jl.Energy.Variance = make([]float64, 0, len(l.Records))
	for _, r := range l.Records {
		jl.Energy.Iters = append(jl.Energy.Iters, r.Iter)
		jl.Energy.Mean.Real = append(jl.Energy.Mean.Real, real(r.Energy))
		jl.Energy.Mean.Imag = append(jl.Energy.Mean.Imag, imag(r.Energy))
		jl.Energy.Variance = append(jl.Energy.Variance, r.Variance)
	}

	b, err := json.Marshal(jl)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, l.Name+".json"), b, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Read loads the named run's log from dir.
func Read(dir, name string) (*Log, error) {
	b, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	var jl jsonLog
	if err := json.Unmarshal(b, &jl); err != nil {
		return nil, errors.Wrap(err, "")
	}

	m := jl.Energy
	if len(m.Mean.Real) != len(m.Iters) || len(m.Mean.Imag) != len(m.Iters) || len(m.Variance) != len(m.Iters) {
		return nil, errors.Errorf("%d %d %d %d", len(m.Iters), len(m.Mean.Real), len(m.Mean.Imag), len(m.Variance))
	}

	l := New(name)
	for i, iter := range m.Iters {
		l.Append(iter, complex(m.Mean.Real[i], m.Mean.Imag[i]), m.Variance[i])
	}
	return l, nil
}
