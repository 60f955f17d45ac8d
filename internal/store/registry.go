package store

import (
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adamavenir/agentjob/internal/types"
)

const listConcurrency = 8

// List scans the jobs root and returns one summary per readable job,
// with derived fields computed at the given instant. Directories with a
// missing or corrupt record are skipped. Summaries are ordered by
// start_time descending; jobs without a start_time sort last.
func (s *Store) List(now time.Time) ([]types.JobSummary, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.JobSummary{}, nil
		}
		return nil, err
	}

	results := make([]*types.JobSummary, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(listConcurrency)

	for i, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		g.Go(func() error {
			st, err := s.Read(entry.Name())
			if err != nil {
				return nil
			}
			summary := st.Summary(now)
			results[i] = &summary
			return nil
		})
	}
	_ = g.Wait()

	summaries := make([]types.JobSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}

	// ISO-8601 timestamps sort lexicographically; descending puts the
	// newest first and empty start times last.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].StartTime > summaries[j].StartTime
	})
	return summaries, nil
}
