package solution

import (
	"fmt"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/projtype"
	"github.com/ritzau/slnkit/pkg/sln"
)

var defaultConfigurations = []string{"Debug|Any CPU", "Release|Any CPU"}

// Save writes the solution file and every project file with pending edits
func (s *Solution) Save() error {
	s.sync()
	if err := s.file.WriteFile(s.path); err != nil {
		return fmt.Errorf("saving solution: %w", err)
	}
	if err := s.evaluator.SaveAll(); err != nil {
		return fmt.Errorf("saving project files: %w", err)
	}
	logging.Info("saved solution", "path", s.path, "entries", len(s.nodes))
	s.added = make(map[string]bool)
	return nil
}

// sync projects the model onto the container
func (s *Solution) sync() {
	dir := s.Dir()
	projects := make([]*sln.Project, 0, len(s.nodes))
	var newProjects []string

	for _, n := range s.nodes {
		entry, ok := s.entries[n.ID]
		if !ok {
			entry = &sln.Project{TypeID: projtype.TypeID(n.Type), ID: n.ID}
			s.entries[n.ID] = entry
			if n.IsBuildable() {
				newProjects = append(newProjects, n.ID)
			}
		}
		entry.Name = n.Name
		if n.IsFolder() {
			entry.Path = n.Name
		} else {
			entry.Path = solutionRelative(dir, n.Path)
		}
		projects = append(projects, entry)
	}
	s.file.Projects = projects

	if len(newProjects) > 0 {
		s.addConfigurations(newProjects)
	}

	// Rebuilt in node order so output is stable
	if len(s.parents) == 0 {
		s.file.RemoveSection(sln.SectionNestedProjects)
		return
	}
	nested := s.file.EnsureSection(sln.SectionNestedProjects, sln.PhasePreSolution)
	nested.Entries = nested.Entries[:0]
	for _, n := range s.nodes {
		if parent, ok := s.parents[n.ID]; ok {
			nested.Entries = append(nested.Entries, sln.Entry{Key: n.ID, Value: parent})
		}
	}
}

// addConfigurations maps every solution configuration onto the new projects
// so they build with the solution.
func (s *Solution) addConfigurations(ids []string) {
	solutionConfigs := s.file.EnsureSection(sln.SectionSolutionConfigurationPlatforms, sln.PhasePreSolution)
	if len(solutionConfigs.Entries) == 0 {
		for _, c := range defaultConfigurations {
			solutionConfigs.Set(c, c)
		}
	}

	projectConfigs := s.file.EnsureSection(sln.SectionProjectConfigurationPlatforms, sln.PhasePostSolution)
	for _, id := range ids {
		if projectConfigs.HasKeyPrefix(id + ".") {
			continue
		}
		for _, e := range solutionConfigs.Entries {
			projectConfigs.Set(id+"."+e.Key+".ActiveCfg", e.Value)
			projectConfigs.Set(id+"."+e.Key+".Build.0", e.Value)
		}
	}
}
