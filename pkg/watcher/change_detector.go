package watcher

import (
	"os"
	"path/filepath"
	"sort"
)

// ChangeAnalysis describes which project files need attention after a batch
type ChangeAnalysis struct {
	NewProjects     []string // Project files that appeared
	ChangedProjects []string // Project files whose content changed
}

// Empty reports whether there is nothing to do
func (a *ChangeAnalysis) Empty() bool {
	return len(a.NewProjects) == 0 && len(a.ChangedProjects) == 0
}

// AnalyzeChanges deduplicates the paths of debounced events. Files that no
// longer exist are dropped, and a file that was both created and written is
// only reported as new.
func AnalyzeChanges(events ...ChangeEvent) *ChangeAnalysis {
	added := make(map[string]bool)
	changed := make(map[string]bool)

	for _, event := range events {
		for _, p := range event.Paths {
			p = filepath.Clean(p)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if event.Type == ChangeTypeProjectAdded {
				added[p] = true
			} else {
				changed[p] = true
			}
		}
	}

	analysis := &ChangeAnalysis{}
	for p := range added {
		analysis.NewProjects = append(analysis.NewProjects, p)
	}
	for p := range changed {
		if !added[p] {
			analysis.ChangedProjects = append(analysis.ChangedProjects, p)
		}
	}
	sort.Strings(analysis.NewProjects)
	sort.Strings(analysis.ChangedProjects)
	return analysis
}
