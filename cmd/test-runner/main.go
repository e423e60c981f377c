// Package main - test-runner
// Executable that runs the full-engine drills against a real clock.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/squeegeesoft/pressworks/server/test"
)

func main() {
	fmt.Println("PRESSWORKS - ENGINE DRILL SUITE")
	fmt.Println("================================")

	ctx := context.Background()

	fmt.Println("\nStarting drill: running the shop dry...")
	drill := test.NewBankruptcyDrill()
	drill.Run(ctx)

	results := drill.Results()
	passed := 0
	failed := 0

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("DRILL RESULTS")
	fmt.Println(strings.Repeat("=", 60))
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("  [%s] %-20s expected %q, got %q\n", status, r.ScenarioName, r.Expected, r.Actual)
	}
	fmt.Printf("\nPassed: %d, Failed: %d\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}
