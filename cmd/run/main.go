// Command run trains the five variational wave-functions on the Heisenberg
// chain and reports their energy trajectories against the exact ground state.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"nqs"
	"nqs/ansatz"
	"nqs/dmrg"
	"nqs/runlog"
	"nqs/vmc"
)

const (
	fnameDone  = "done.txt"
	fnameExact = "exact.txt"
	fnameDMRG  = "dmrg.txt"
	fnameDB    = "runs.db"
	fnamePlot  = "energy.png"
)

var (
	runDir     = flag.String("d", filepath.Join("runs", "heisenberg"), "run directory")
	numSites   = flag.Int("n", 22, "number of chain sites")
	periodic   = flag.Bool("periodic", true, "periodic boundary conditions")
	iterations = flag.Int("iters", 300, "optimization iterations per ansatz")
	samples    = flag.Int("samples", 1024, "Monte Carlo samples per iteration")
)

type Config struct {
	name string
	wf   ansatz.Wavefunction
	opt  vmc.Options
}

func newConfigs(n int) []Config {
	opt := vmc.NewOptions().Iterations(*iterations).Samples(*samples)
	return []Config{
		{name: "jastrow", wf: ansatz.NewJastrow(n), opt: opt.Seed(1)},
		{name: "rbm", wf: ansatz.NewRBM(n, 1), opt: opt.Seed(2)},
		{name: "rbm-symm", wf: ansatz.NewSymmRBM(n, 1), opt: opt.Seed(3)},
		{name: "ffn", wf: ansatz.NewFFN(n, 2*n), opt: opt.Seed(4)},
		{name: "ffn2", wf: ansatz.NewFFN(n, 2*n, n), opt: opt.Seed(5)},
	}
}

func solveExact(dir string, h *nqs.Heisenberg) (nqs.Statistics, error) {
	fpath := filepath.Join(dir, fnameExact)
	if _, err := os.Stat(filepath.Join(dir, fnameDone)); err == nil {
		b, err := os.ReadFile(fpath)
		if err != nil {
			return nqs.Statistics{}, errors.Wrap(err, "")
		}
		var stats nqs.Statistics
		if err := json.Unmarshal(b, &stats); err != nil {
			return nqs.Statistics{}, errors.Wrap(err, "")
		}
		return stats, nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nqs.Statistics{}, errors.Wrap(err, "")
	}

	energy, vec, err := h.Ground()
	if err != nil {
		return nqs.Statistics{}, errors.Wrap(err, "")
	}
	stats, err := h.GroundStatistics(energy, vec)
	if err != nil {
		return nqs.Statistics{}, errors.Wrap(err, "")
	}

	b, err := json.Marshal(stats)
	if err != nil {
		return nqs.Statistics{}, errors.Wrap(err, "")
	}
	if err := os.WriteFile(fpath, b, 0644); err != nil {
		return nqs.Statistics{}, errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, fnameDone), nil, 0644); err != nil {
		return nqs.Statistics{}, errors.Wrap(err, "")
	}
	return stats, nil
}

// DMRGResult is the matrix product state cross-check on the open chain.
type DMRGResult struct {
	Energy float64
	Exact  float64
}

func solveDMRG(dir string, n int) (DMRGResult, error) {
	fpath := filepath.Join(dir, fnameDMRG)
	if _, err := os.Stat(filepath.Join(dir, fnameDone)); err == nil {
		b, err := os.ReadFile(fpath)
		if err != nil {
			return DMRGResult{}, errors.Wrap(err, "")
		}
		var res DMRGResult
		if err := json.Unmarshal(b, &res); err != nil {
			return DMRGResult{}, errors.Wrap(err, "")
		}
		return res, nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}

	chain, err := nqs.NewChain(n, false)
	if err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}
	sector, err := nqs.ZeroMagnetization(n)
	if err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}
	h, err := nqs.NewHeisenberg(chain, sector, 1)
	if err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}
	exact, _, err := h.Ground()
	if err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}

	mpo := dmrg.Heisenberg(n, 1)
	fs := make([]*tensor.Dense, 0, len(mpo))
	for range mpo {
		fs = append(fs, tensor.Zeros(1))
	}
	var bufs [10]*tensor.Dense
	for i := range len(bufs) {
		bufs[i] = tensor.Zeros(1)
	}
	const bondDim = 16
	rng := rand.New(rand.NewPCG(1, 1))
	state := dmrg.Random(mpo, bondDim, rng)
	energy, err := dmrg.GroundState(fs, mpo, state, bufs, dmrg.NewOptions().Tol(1e-5))
	if err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}

	res := DMRGResult{Energy: float64(real(energy)), Exact: exact}
	b, err := json.Marshal(res)
	if err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}
	if err := os.WriteFile(fpath, b, 0644); err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, fnameDone), nil, 0644); err != nil {
		return DMRGResult{}, errors.Wrap(err, "")
	}
	return res, nil
}

func train(dir string, db *runlog.DB, h *nqs.Heisenberg, cfg Config) error {
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		// Re-archive from the JSON log, in case the database is new.
		lg, err := runlog.Read(dir, cfg.name)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if err := db.Archive(lg); err != nil {
			return errors.Wrap(err, "")
		}
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	lg := runlog.New(cfg.name)
	if err := vmc.Run(h, cfg.wf, lg, cfg.opt); err != nil {
		return errors.Wrap(err, "")
	}
	if err := lg.Write(dir); err != nil {
		return errors.Wrap(err, "")
	}
	if err := db.Archive(lg); err != nil {
		return errors.Wrap(err, "")
	}

	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func gather(db *runlog.DB) ([]*runlog.Log, error) {
	names, err := db.Runs()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	logs := make([]*runlog.Log, 0, len(names))
	for _, name := range names {
		lg, err := db.Load(name)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		logs = append(logs, lg)
	}
	return logs, nil
}

func render(fpath string, logs []*runlog.Log, exact float64) error {
	p := plot.New()
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "energy"
	p.Legend.Top = true

	var maxIter int
	for i, lg := range logs {
		xys := make(plotter.XYs, 0, len(lg.Records))
		for _, r := range lg.Records {
			xys = append(xys, plotter.XY{X: float64(r.Iter), Y: real(r.Energy)})
			maxIter = max(maxIter, r.Iter)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrap(err, lg.Name)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(lg.Name, line)
	}

	ref, err := plotter.NewLine(plotter.XYs{{X: 0, Y: exact}, {X: float64(maxIter), Y: exact}})
	if err != nil {
		return errors.Wrap(err, "")
	}
	ref.Color = plotutil.Color(len(logs))
	ref.Dashes = plotutil.Dashes(2)
	p.Add(ref)
	p.Legend.Add("exact", ref)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, fpath); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if s := os.Getenv("NQS_MAXPROCS"); s != "" {
		procs, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrap(err, s)
		}
		runtime.GOMAXPROCS(procs)
	}
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	chain, err := nqs.NewChain(*numSites, *periodic)
	if err != nil {
		return errors.Wrap(err, "")
	}
	sector, err := nqs.ZeroMagnetization(*numSites)
	if err != nil {
		return errors.Wrap(err, "")
	}
	h, err := nqs.NewHeisenberg(chain, sector, 1)
	if err != nil {
		return errors.Wrap(err, "")
	}

	exact, err := solveExact(filepath.Join(*runDir, "exact"), h)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("exact energy %f, per site %f", exact.Energy, exact.EnergyPerSite)

	dmrgRes, err := solveDMRG(filepath.Join(*runDir, "dmrg"), *numSites)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("dmrg %f, open chain exact %f", dmrgRes.Energy, dmrgRes.Exact)

	db, err := runlog.Open(filepath.Join(*runDir, fnameDB))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()

	for _, cfg := range newConfigs(*numSites) {
		if err := train(filepath.Join(*runDir, cfg.name), db, h, cfg); err != nil {
			return errors.Wrap(err, cfg.name)
		}
		log.Printf("%s done", cfg.name)
	}

	logs, err := gather(db)
	if err != nil {
		return errors.Wrap(err, "")
	}

	fmt.Printf("run,iters,energy,variance,exact,error\n")
	for _, lg := range logs {
		last := lg.Records[len(lg.Records)-1]
		relErr := math.Abs((real(last.Energy) - exact.Energy) / exact.Energy)
		fmt.Printf("%s,%d,%f,%f,%f,%f\n", lg.Name, len(lg.Records), real(last.Energy), last.Variance, exact.Energy, relErr)
	}

	if err := render(filepath.Join(*runDir, fnamePlot), logs, exact.Energy); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
