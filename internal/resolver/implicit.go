package resolver

import (
	"fmt"
	"strings"

	"github.com/taskforge-dev/taskforge/internal/graph"
	"github.com/taskforge-dev/taskforge/internal/task"
)

// ImplicitDependency is an inferred ordering edge missing from the
// dependent's depends_on list.
type ImplicitDependency struct {
	CreatorID   string `json:"creator_id"`
	DependentID string `json:"dependent_id"`
	Reason      string `json:"reason"`
}

// Verbs that mark a write task as the creator of its file resource. Matched
// against the first word of the description only.
var createVerbs = map[string]bool{
	"create":   true,
	"generate": true,
	"write":    true,
	"make":     true,
	"build":    true,
}

// A small fixed vocabulary for the install-before-use rule. Deliberately not
// a substring heuristic over arbitrary words: only these names match.
var knownPackages = []string{
	"numpy", "pandas", "scipy", "matplotlib", "requests",
	"flask", "django", "fastapi", "pytest", "sqlalchemy",
	"express", "react", "typescript", "webpack", "lodash",
}

// DetectImplicitDependencies scans the plan for orderings that should have
// been declared but were not. Two heuristics:
//
//   - File rule: a write task whose description starts with a create verb and
//     that names a filepath input is the creator of that file; any other
//     write or read task naming the same filepath without a dependency path
//     back to the creator gets an inferred edge. The match is on the exact
//     resource key, never on description substrings.
//   - Install rule: a task whose description mentions installing one of a
//     fixed package vocabulary precedes any non-install task mentioning the
//     same package.
//
// Best-effort by design: false negatives are expected, results carry
// human-readable reasons, and an empty result is a normal outcome.
func (r *Resolver) DetectImplicitDependencies() []ImplicitDependency {
	var found []ImplicitDependency
	seen := make(map[[2]string]bool)

	emit := func(creator, dependent *task.Task, reason string) {
		key := [2]string{creator.ID, dependent.ID}
		if seen[key] {
			return
		}
		seen[key] = true
		found = append(found, ImplicitDependency{
			CreatorID:   creator.ID,
			DependentID: dependent.ID,
			Reason:      reason,
		})
		r.logger.Debug("implicit dependency detected",
			"creator", creator.ID, "dependent", dependent.ID, "reason", reason)
	}

	r.detectFileDependencies(emit)
	r.detectPackageDependencies(emit)
	return found
}

func (r *Resolver) detectFileDependencies(emit func(creator, dependent *task.Task, reason string)) {
	// Resource key -> creating task. First creator in plan order wins.
	creators := make(map[string]*task.Task)
	for _, t := range r.plan.Tasks {
		if t.Type != task.TypeWrite || !startsWithCreateVerb(t.Description) {
			continue
		}
		if path, ok := filepathInput(t); ok {
			if _, exists := creators[path]; !exists {
				creators[path] = t
			}
		}
	}

	for _, t := range r.plan.Tasks {
		path, ok := filepathInput(t)
		if !ok {
			continue
		}
		creator, ok := creators[path]
		if !ok || creator.ID == t.ID {
			continue
		}
		if r.dependsTransitively(t, creator.ID) {
			continue
		}
		switch t.Type {
		case task.TypeWrite:
			emit(creator, t, fmt.Sprintf("File %q must be created before modification", path))
		case task.TypeRead:
			emit(creator, t, fmt.Sprintf("File %q must be created before reading", path))
		}
	}
}

func (r *Resolver) detectPackageDependencies(emit func(creator, dependent *task.Task, reason string)) {
	for _, installer := range r.plan.Tasks {
		desc := strings.ToLower(installer.Description)
		if !strings.Contains(desc, "install") {
			continue
		}
		for _, pkg := range knownPackages {
			if !strings.Contains(desc, pkg) {
				continue
			}
			for _, t := range r.plan.Tasks {
				if t.ID == installer.ID {
					continue
				}
				other := strings.ToLower(t.Description)
				if strings.Contains(other, "install") || !strings.Contains(other, pkg) {
					continue
				}
				if r.dependsTransitively(t, installer.ID) {
					continue
				}
				emit(installer, t, fmt.Sprintf("Package %q must be installed before use", pkg))
			}
		}
	}
}

// AddImplicitDependencies appends every detected creator to its dependent's
// depends_on list (when not already present) and rebuilds the graph from the
// mutated task list. The graph is never patched incrementally.
func (r *Resolver) AddImplicitDependencies() []ImplicitDependency {
	found := r.DetectImplicitDependencies()
	added := 0
	for _, dep := range found {
		t, ok := r.plan.TaskByID(dep.DependentID)
		if !ok || t.DependsOnTask(dep.CreatorID) {
			continue
		}
		t.DependsOn = append(t.DependsOn, dep.CreatorID)
		added++
	}
	if added > 0 {
		r.graph = graph.New(r.plan.Tasks)
		r.logger.Info("added implicit dependencies and rebuilt graph", "count", added)
	}
	return found
}

// dependsTransitively reports whether t already reaches targetID through its
// declared dependency chain.
func (r *Resolver) dependsTransitively(t *task.Task, targetID string) bool {
	_, ok := r.graph.Ancestors(t.ID)[targetID]
	return ok
}

func startsWithCreateVerb(description string) bool {
	fields := strings.Fields(strings.ToLower(description))
	return len(fields) > 0 && createVerbs[fields[0]]
}

func filepathInput(t *task.Task) (string, bool) {
	if path, ok := t.Requirement.Input("filepath"); ok && path != "" {
		return path, true
	}
	if path, ok := t.Requirement.Input("file_path"); ok && path != "" {
		return path, true
	}
	return "", false
}
