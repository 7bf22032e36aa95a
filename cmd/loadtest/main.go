package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	bytes    int64
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	bytes     int64
	latencies []time.Duration
}

var (
	baseURL    string
	numWorkers int
	duration   time.Duration
	runShare   float64
	httpClient *http.Client
)

func main() {
	flag.StringVar(&baseURL, "url", "http://127.0.0.1:8090", "daemon base URL")
	flag.IntVar(&numWorkers, "workers", 50, "concurrent clients")
	flag.DurationVar(&duration, "duration", 10*time.Second, "length of each phase")
	flag.Float64Var(&runShare, "run-share", 0.01, "fraction of requests that trigger POST /run in the mixed phase")
	flag.Parse()

	httpClient = &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        numWorkers * 4,
			MaxIdleConnsPerHost: numWorkers * 4,
			IdleConnTimeout:     30 * time.Second,
			// gzip is requested explicitly per call
			DisableCompression: true,
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	fmt.Println("=== SocialStats Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, duration)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Snapshot reads (50% gzip, 50% identity) ---")
	runPhase(func(rng *rand.Rand) result {
		return doGetSnapshot(rng.Float64() < 0.5)
	})

	fmt.Println("\n--- Phase 2: Mixed load (snapshot, health, manual runs) ---")
	runPhase(func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < runShare:
			return doPostRun()
		case r < 0.80:
			return doGetSnapshot(true)
		default:
			return doGet("/health", "GET /health")
		}
	})
}

func runPhase(workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := atomic.NewBool(false)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for !stop.Load() {
				results <- workFn(rng)
			}
		}(rand.Int63() + int64(i))
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			s.bytes += r.bytes
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	stop.Store(true)
	wg.Wait()
	close(results)
	<-done

	printResults(all)
}

func printResults(all map[string]*stats) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(all))
	for ep := range all {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg size", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 99))

	for _, ep := range endpoints {
		s := all[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %9dB %10s %10s %10s %10s\n",
			ep, s.count, s.errors, s.bytes/max(s.count, 1),
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	fmt.Println("  " + strings.Repeat("-", 99))
	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func doGetSnapshot(gzip bool) result {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/snapshot", nil)
	name := "GET /snapshot"
	if gzip {
		req.Header.Set("Accept-Encoding", "gzip")
		name += " (gzip)"
	}
	return do(req, name, http.StatusOK)
}

func doGet(path, name string) result {
	req, _ := http.NewRequest(http.MethodGet, baseURL+path, nil)
	return do(req, name, http.StatusOK)
}

// doPostRun counts a 409 as success: only one run can be in flight.
func doPostRun() result {
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/run", nil)
	r := do(req, "POST /run", http.StatusAccepted)
	if r.status == http.StatusConflict {
		r.err = false
	}
	return r
}

func do(req *http.Request, name string, want int) result {
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return result{endpoint: name, latency: time.Since(start), err: true}
	}
	n, _ := io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{endpoint: name, status: resp.StatusCode, latency: time.Since(start), bytes: n, err: resp.StatusCode != want}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
