package main

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/Compaile/ctrack"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Eight goroutines counting primes in disjoint ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		const (
			totalNumbers   = 1_000_000
			goroutineCount = 8
		)
		numbersPerGoroutine := totalNumbers / goroutineCount

		var primeCount atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < goroutineCount; i++ {
			start := i*numbersPerGoroutine + 1
			end := (i + 1) * numbersPerGoroutine
			if i == goroutineCount-1 {
				end = totalNumbers
			}
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				countPrimesInRange(start, end, &primeCount)
			}(start, end)
		}
		wg.Wait()

		fmt.Printf("Total primes found: %d\n", primeCount.Load())
		return ctrack.Print(ctrack.DefaultSettings())
	},
}

func countPrimesInRange(start, end int, primeCount *atomic.Int64) {
	defer ctrack.Track()()
	for i := start; i <= end; i++ {
		if isPrime(i) {
			primeCount.Add(1)
		}
	}
}

func isPrime(n int) bool {
	defer ctrack.Track()()
	if n <= 1 {
		return false
	}
	limit := int(math.Sqrt(float64(n)))
	for i := 2; i <= limit; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
