package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numBuddies   = 20
	numSuits     = 5
)

var buddies = []string{
	"Alice", "Bob", "Carol", "Dan", "Erin", "Frank", "Grace", "Heidi",
	"Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert",
	"Sybil", "Trent", "Victor", "Walter", "Yolanda",
}

var suits = []string{"3mm wet", "5mm wet", "7mm semi-dry", "drysuit", "shorty"}

var statsQueries = []string{
	"/stats?type=maxDepth&binner=10m",
	"/stats?type=duration&binner=30min",
	"/stats?type=date&binner=month&fill=true",
	"/stats?type=buddy&binner=buddy",
	"/stats?type=date&binner=year&op=maxDepth:mean",
	"/stats?type=buddy&binner=buddy&op=duration:sum",
}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== Divelog Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n\n", numWorkers, testDuration)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/dives")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: Seed the logbook with dives
	fmt.Println("\n--- Phase 1: Seeding dives (POST /dives/add) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doAddDive(rng)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (40% POST, 60% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doAddDive(rng)
		case r < 0.60:
			return doGetDives()
		case r < 0.80:
			return doGetStats(rng)
		case r < 0.90:
			return doGetScatter()
		default:
			return doGetSummary()
		}
	})

	// Phase 3: Read-heavy load with filter churn
	fmt.Println("\n--- Phase 3: Read-heavy load (5% POST, 5% filter, 90% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doAddDive(rng)
		case r < 0.10:
			return doSetFilter(rng)
		case r < 0.45:
			return doGetDives()
		case r < 0.75:
			return doGetStats(rng)
		case r < 0.90:
			return doGetScatter()
		default:
			return doGetSummary()
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doAddDive(rng *rand.Rand) result {
	depth := (rng.Intn(45) + 5) * 1000 // mm
	duration := (rng.Intn(70) + 20) * 60
	when := time.Now().Unix() - int64(rng.Intn(3*365*24*3600))

	body := map[string]interface{}{
		"when":      when,
		"duration":  duration,
		"maxDepth":  depth,
		"meanDepth": depth * 2 / 3,
		"buddy":     buddies[rng.Intn(numBuddies)],
		"suit":      suits[rng.Intn(numSuits)],
		"cylinders": []map[string]interface{}{
			{
				"gasmix":  map[string]int{"o2": 0, "he": 0},
				"size":    24000,
				"start":   220000,
				"end":     90000 + rng.Intn(60000),
				"gasUsed": 1000000 + rng.Intn(1500000),
			},
		},
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/dives/add", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /dives/add", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /dives/add", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doSetFilter(rng *rand.Rand) result {
	body := map[string]interface{}{
		"constraints": []map[string]interface{}{
			{"field": 1, "op": 2, "from": (rng.Intn(30) + 5) * 1000},
		},
	}
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/filter", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /filter", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /filter", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetDives() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/dives")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /dives", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /dives", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetStats(rng *rand.Rand) result {
	url := baseURL + statsQueries[rng.Intn(len(statsQueries))]
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /stats", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /stats", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetScatter() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/scatter?x=maxDepth&y=duration")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /scatter", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /scatter", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetSummary() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/summary?type=maxDepth")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /summary", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /summary", resp.StatusCode, lat, resp.StatusCode != 200}
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
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
