/* utils.go
 * Utility functions used by the CLI entrypoint
 */

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-andiamo/splitter"
)

// parseLogArg splits a -log argument into exercise name, amount and optional weight
// Preconditions: Receives a string like '"Sled Push" 120' or 'Burpees 50 9'
// Postconditions: Returns the exercise name, amount and optional weight, or an error if the argument does
// not have 2 or 3 tokens or the numbers do not parse
func parseLogArg(arg string) (string, float64, *float64, error) {
	// we use splitter here instead of strings.Fields because now we can have exercise names that contain
	// spaces e.g. "Sled Push" recognised as one name not two
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	tokens, err := spaceSplitter.Split(strings.TrimSpace(arg))
	if err != nil {
		return "", 0, nil, err
	}

	if len(tokens) < 2 || len(tokens) > 3 {
		return "", 0, nil, fmt.Errorf("expected '\"<exercise>\" <amount> [weight]', got %d tokens", len(tokens))
	}

	name := strings.Trim(tokens[0], "\"")

	amount, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return "", 0, nil, fmt.Errorf("invalid amount %q", tokens[1])
	}

	var weight *float64
	if len(tokens) == 3 {
		w, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return "", 0, nil, fmt.Errorf("invalid weight %q", tokens[2])
		}
		weight = &w
	}

	return name, amount, weight, nil
}

// roundDisplayPercent rounds an unrounded readiness value for printing
func roundDisplayPercent(readiness float64) int {
	return int(math.Round(readiness))
}
