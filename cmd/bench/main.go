// Command bench runs a synthetic workload against the three primitives and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/rgbygv/syncbox/listset"
	"github.com/rgbygv/syncbox/memo"
	pmet "github.com/rgbygv/syncbox/metrics/prom"
	"github.com/rgbygv/syncbox/workpool"
)

// workloadConfig is the optional YAML config file. Any field left at zero
// falls back to the corresponding flag value.
//
//	workers: 16
//	duration: 10s
//	keys: 100000
//	set_range: 4096
//	zipf_s: 1.1
//	memo_pct: 60
//	set_pct: 30
type workloadConfig struct {
	Workers  int            `yaml:"workers"`
	Duration flexDuration   `yaml:"duration"`
	Keys     int            `yaml:"keys"`
	SetRange int            `yaml:"set_range"`
	ZipfS    float64        `yaml:"zipf_s"`
	MemoPct  int            `yaml:"memo_pct"`
	SetPct   int            `yaml:"set_pct"`
}

// flexDuration accepts Go duration strings ("10s", "1m30s") in YAML.
type flexDuration time.Duration

func (d *flexDuration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = flexDuration(v)
	return nil
}

func main() {
	// ---- Flags ----
	var (
		configPath = flag.String("config", "", "optional YAML workload config (fields override flags)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "pool size and producer count")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		keys     = flag.Int("keys", 100_000, "memo keyspace size")
		setRange = flag.Int("set_range", 4_096, "listset value range")
		zipfS    = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (key skew)")
		memoPct  = flag.Int("memo_pct", 60, "percentage of jobs hitting the memo cache")
		setPct   = flag.Int("set_pct", 30, "percentage of jobs mutating the listset")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	cfg := workloadConfig{
		Workers:  *workers,
		Duration: flexDuration(*duration),
		Keys:     *keys,
		SetRange: *setRange,
		ZipfS:    *zipfS,
		MemoPct:  *memoPct,
		SetPct:   *setPct,
	}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if cfg.MemoPct+cfg.SetPct > 100 {
		log.Fatalf("memo_pct + set_pct must be <= 100 (the rest is pure pool churn)")
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Primitives under test ----
	cache := memo.New[int, int](memo.Options{
		Metrics: pmet.NewMemo(nil, "syncbox", "memo", nil),
	})
	set := listset.New[int]()
	pool := workpool.New(cfg.Workers,
		workpool.WithMetrics(pmet.NewPool(nil, "syncbox", "pool", nil)))

	// ---- Workload ----
	log.Printf("bench: %d workers, %v, %d keys (zipf s=%.2f), set range %d",
		cfg.Workers, time.Duration(cfg.Duration), cfg.Keys, cfg.ZipfS, cfg.SetRange)

	var jobs atomic.Int64
	deadline := time.Now().Add(time.Duration(cfg.Duration))

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(*seed + int64(id)*7919))
			zipf := rand.NewZipf(r, cfg.ZipfS, 1.0, uint64(cfg.Keys-1))
			for time.Now().Before(deadline) {
				var job workpool.Job
				switch p := r.Intn(100); {
				case p < cfg.MemoPct:
					k := int(zipf.Uint64())
					job = func() {
						cache.GetOrInsert(k, func(k int) int {
							// Simulate a computation worth memoizing.
							time.Sleep(100 * time.Microsecond)
							return k * k
						})
					}
				case p < cfg.MemoPct+cfg.SetPct:
					v := r.Intn(cfg.SetRange)
					switch r.Intn(3) {
					case 0:
						job = func() { set.Insert(v) }
					case 1:
						job = func() { set.Remove(v) }
					default:
						job = func() { set.Contains(v) }
					}
				default:
					job = func() {} // pure queue/barrier churn
				}
				if err := pool.Execute(job); err != nil {
					log.Printf("execute: %v", err)
					return
				}
				jobs.Add(1)
			}
		}(w)
	}
	wg.Wait()
	pool.Join()
	if err := pool.Close(); err != nil {
		log.Fatalf("pool close: %v", err)
	}

	// ---- Summary ----
	st := set.Stats()
	fmt.Printf("jobs submitted:   %d (%.0f/s)\n", jobs.Load(), float64(jobs.Load())/time.Duration(cfg.Duration).Seconds())
	fmt.Printf("memo slots:       %d\n", cache.Len())
	fmt.Printf("set size:         %d\n", set.Len())
	fmt.Printf("set ops:          %d searches, %d inserts, %d removes\n", st.Searches, st.Inserts, st.Removes)
}

// loadConfig overlays non-zero fields from a YAML file onto cfg.
func loadConfig(path string, cfg *workloadConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file workloadConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Workers > 0 {
		cfg.Workers = file.Workers
	}
	if file.Duration > 0 {
		cfg.Duration = file.Duration
	}
	if file.Keys > 0 {
		cfg.Keys = file.Keys
	}
	if file.SetRange > 0 {
		cfg.SetRange = file.SetRange
	}
	if file.ZipfS > 1 {
		cfg.ZipfS = file.ZipfS
	}
	if file.MemoPct > 0 {
		cfg.MemoPct = file.MemoPct
	}
	if file.SetPct > 0 {
		cfg.SetPct = file.SetPct
	}
	return nil
}
