// Package main - floortraffic
// Load generator for stress testing the shop server: simulates dozens of
// concurrent terminal players spamming press and job-board actions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the traffic run
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

// Action types for simulation
var actionTypes = []string{
	"ACCEPT_JOB",
	"DECLINE_JOB",
	"COMPLETE_JOB",
	"BURN_SCREEN",
	"MOUNT_SCREEN",
	"LOAD_SHIRT",
	"ROTATE_HEADS",
	"ROTATE_CAROUSEL",
	"PULL_PRINT",
	"UNLOAD_SHIRT",
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 25, "Number of concurrent clients")
	interval := flag.Duration("interval", 300*time.Millisecond, "Action interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
	}

	fmt.Println("=========================================")
	fmt.Println("FLOOR TRAFFIC - Stress Test Tool")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Clients: %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)
	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d clients started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := atomic.LoadInt64(&stats.MessagesSent)
				recv := atomic.LoadInt64(&stats.MessagesReceived)
				errs := atomic.LoadInt64(&stats.Errors)
				fmt.Printf("Progress: Sent=%d Recv=%d Errors=%d\n", sent, recv, errs)
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	playerID := fmt.Sprintf("PRINTER_%03d", clientID)

	u, err := url.Parse(config.ServerURL)
	if err != nil {
		log.Printf("Client %d: URL parse error: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}

	q := u.Query()
	q.Set("player_id", playerID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		log.Printf("Client %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
		}
	}()

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			action := generateRandomAction(playerID)
			start := time.Now()

			if err := conn.WriteJSON(action); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

func generateRandomAction(playerID string) map[string]interface{} {
	actionType := actionTypes[rand.Intn(len(actionTypes))]

	action := map[string]interface{}{
		"type":      actionType,
		"player_id": playerID,
	}

	// Fake but well-formed payloads. The server is expected to reject most
	// of these with ACTION_RESULT errors, which is exactly the point: the
	// validation path is the hot path under player spam.
	switch actionType {
	case "ACCEPT_JOB", "DECLINE_JOB", "COMPLETE_JOB":
		action["payload"] = map[string]interface{}{
			"job_id": fmt.Sprintf("job-%03d", rand.Intn(50)),
		}

	case "BURN_SCREEN":
		locations := []string{"FRONT", "BACK", "POCKET", "NAPE", "LEFT_SLEEVE", "RIGHT_SLEEVE"}
		action["payload"] = map[string]interface{}{
			"job_id":      fmt.Sprintf("job-%03d", rand.Intn(50)),
			"location":    locations[rand.Intn(len(locations))],
			"color_index": rand.Intn(6),
		}

	case "MOUNT_SCREEN":
		action["payload"] = map[string]interface{}{
			"head":      rand.Intn(6),
			"screen_id": fmt.Sprintf("screen-%03d", rand.Intn(50)),
		}

	case "LOAD_SHIRT":
		action["payload"] = map[string]interface{}{
			"platen": rand.Intn(4),
			"job_id": fmt.Sprintf("job-%03d", rand.Intn(50)),
		}

	case "UNLOAD_SHIRT":
		action["payload"] = map[string]interface{}{
			"platen": rand.Intn(4),
		}
	}

	return action
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Messages Sent:     %d\n", sent)
	fmt.Printf("Messages Received: %d\n", recv)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	if errs == 0 {
		fmt.Println("TEST PASSED: no transport errors")
	} else if float64(errs)/float64(sent+1) < 0.05 {
		fmt.Println("TEST WARNING: some transport errors detected")
	} else {
		fmt.Println("TEST FAILED: high transport error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"messages_sent":      sent,
		"messages_received":  recv,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("floortraffic_results.json", jsonData, 0644)
	fmt.Println("\nResults saved to floortraffic_results.json")
}
