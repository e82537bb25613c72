package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Compaile/ctrack"
)

var basicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Single-threaded sum-of-squares, factorial, and fibonacci",
	RunE: func(cmd *cobra.Command, args []string) error {
		sum := sumOfSquares(1000)
		fact := factorial(20)
		fib := fibonacci(24)

		fmt.Printf("Sum of squares: %v\n", sum)
		fmt.Printf("Factorial: %v\n", fact)
		fmt.Printf("Fibonacci: %v\n", fib)

		return ctrack.Print(ctrack.DefaultSettings())
	},
}

func sumOfSquares(n int) float64 {
	defer ctrack.Track()()
	sum := 0.0
	for i := 1; i <= n; i++ {
		sum += float64(i * i)
	}
	return sum
}

func factorial(n int) uint64 {
	defer ctrack.Track()()
	if n <= 1 {
		return 1
	}
	return uint64(n) * factorial(n-1)
}

func fibonacci(n int) int {
	defer ctrack.Track()()
	if n <= 1 {
		return n
	}
	return fibonacci(n-1) + fibonacci(n-2)
}
