package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// ErrTimeout is returned when a detector exceeds its matching budget on a file
var ErrTimeout = errors.New("detector exceeded matching budget")

// Run executes one detector against one text and returns its raw matches in
// ascending start order. Repeated and overlapping occurrences are all kept.
// A budget <= 0 disables the time limit.
func Run(ctx context.Context, text string, d *models.Detector, budget time.Duration) ([]models.RawMatch, error) {
	if d.Matcher == nil {
		return nil, fmt.Errorf("detector %s has no compiled matcher", d.ID)
	}

	if budget <= 0 {
		return toRawMatches(d.ID, d.Matcher.FindAll(text)), nil
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()

	// Buffered so the matcher goroutine can always finish and exit
	done := make(chan [][]int, 1)
	go func() {
		done <- d.Matcher.FindAll(text)
	}()

	select {
	case spans := <-done:
		return toRawMatches(d.ID, spans), nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func toRawMatches(detectorID string, spans [][]int) []models.RawMatch {
	matches := make([]models.RawMatch, 0, len(spans))
	for _, span := range spans {
		matches = append(matches, models.RawMatch{
			DetectorID: detectorID,
			Start:      span[0],
			End:        span[1],
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
	return matches
}
