package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/taskforge-dev/taskforge/internal/task"
)

func mkTask(id, description string, typ task.Type, seconds float64, deps ...string) *task.Task {
	return &task.Task{
		ID:            id,
		Description:   description,
		Type:          typ,
		Status:        task.StatusPending,
		RiskLevel:     task.RiskLow,
		EstimatedTime: seconds,
		DependsOn:     deps,
	}
}

func withFilepath(t *task.Task, path string) *task.Task {
	t.Requirement.Inputs = map[string]any{"filepath": path}
	return t
}

func planOf(tasks ...*task.Task) *task.ExecutionPlan {
	p := task.NewPlan("test plan")
	for _, t := range tasks {
		p.Add(t)
	}
	return p
}

func newResolver(tasks ...*task.Task) *Resolver {
	return New(planOf(tasks...), DefaultThresholds(), nil)
}

func TestDetectImplicitFileDependencies(t *testing.T) {
	r := newResolver(
		withFilepath(mkTask("t1", "Create config.json", task.TypeWrite, 10), "config.json"),
		withFilepath(mkTask("t2", "Update config.json with defaults", task.TypeWrite, 10), "config.json"),
		withFilepath(mkTask("t3", "Read config.json", task.TypeRead, 10), "config.json"),
	)

	found := r.DetectImplicitDependencies()
	if len(found) != 2 {
		t.Fatalf("found %d implicit dependencies, want 2: %+v", len(found), found)
	}

	byDependent := make(map[string]ImplicitDependency)
	for _, dep := range found {
		if dep.CreatorID != "t1" {
			t.Errorf("creator = %s, want t1", dep.CreatorID)
		}
		byDependent[dep.DependentID] = dep
	}
	if dep := byDependent["t2"]; !strings.Contains(dep.Reason, "before modification") {
		t.Errorf("t2 reason = %q, want modification wording", dep.Reason)
	}
	if dep := byDependent["t3"]; !strings.Contains(dep.Reason, "before reading") {
		t.Errorf("t3 reason = %q, want reading wording", dep.Reason)
	}
}

func TestDetectImplicitSkipsDeclaredDependencies(t *testing.T) {
	r := newResolver(
		withFilepath(mkTask("t1", "Create report.md", task.TypeWrite, 10), "report.md"),
		withFilepath(mkTask("t2", "Read report.md", task.TypeRead, 10, "t1"), "report.md"),
	)

	if found := r.DetectImplicitDependencies(); len(found) != 0 {
		t.Errorf("declared dependency should suppress detection, got %+v", found)
	}
}

func TestDetectImplicitSkipsTransitiveDependencies(t *testing.T) {
	r := newResolver(
		withFilepath(mkTask("t1", "Create data.csv", task.TypeWrite, 10), "data.csv"),
		mkTask("t2", "Clean workspace", task.TypeExecute, 5, "t1"),
		withFilepath(mkTask("t3", "Read data.csv", task.TypeRead, 10, "t2"), "data.csv"),
	)

	if found := r.DetectImplicitDependencies(); len(found) != 0 {
		t.Errorf("transitive dependency should suppress detection, got %+v", found)
	}
}

func TestDetectImplicitMatchesResourceKeyNotDescription(t *testing.T) {
	// Same description text, different filepath inputs: no edge.
	r := newResolver(
		withFilepath(mkTask("t1", "Create the output file", task.TypeWrite, 10), "a.txt"),
		withFilepath(mkTask("t2", "Read the output file", task.TypeRead, 10), "b.txt"),
	)

	if found := r.DetectImplicitDependencies(); len(found) != 0 {
		t.Errorf("different resources should not match, got %+v", found)
	}
}

func TestDetectImplicitPackageDependencies(t *testing.T) {
	r := newResolver(
		mkTask("setup", "Install numpy and pandas", task.TypeExecute, 30),
		mkTask("analyze", "Analyze the dataset with numpy", task.TypeExecute, 60),
		mkTask("unrelated", "Write the summary", task.TypeWrite, 20),
	)

	found := r.DetectImplicitDependencies()
	if len(found) != 1 {
		t.Fatalf("found %d implicit dependencies, want 1: %+v", len(found), found)
	}
	dep := found[0]
	if dep.CreatorID != "setup" || dep.DependentID != "analyze" {
		t.Errorf("edge = %s -> %s, want setup -> analyze", dep.CreatorID, dep.DependentID)
	}
	if !strings.Contains(dep.Reason, `"numpy"`) || !strings.Contains(dep.Reason, "installed before use") {
		t.Errorf("reason = %q", dep.Reason)
	}
}

func TestDetectImplicitNoFindingsIsEmpty(t *testing.T) {
	r := newResolver(
		mkTask("a", "Think about the problem", task.TypeThink, 30),
		mkTask("b", "Execute the fix", task.TypeExecute, 30, "a"),
	)

	if found := r.DetectImplicitDependencies(); len(found) != 0 {
		t.Errorf("expected no findings, got %+v", found)
	}
}

func TestAddImplicitDependenciesMutatesPlanAndRebuildsGraph(t *testing.T) {
	creator := withFilepath(mkTask("t1", "Create config.json", task.TypeWrite, 10), "config.json")
	reader := withFilepath(mkTask("t2", "Read config.json", task.TypeRead, 10), "config.json")
	r := newResolver(creator, reader)

	found := r.AddImplicitDependencies()
	if len(found) != 1 {
		t.Fatalf("found %d implicit dependencies, want 1", len(found))
	}
	if !reader.DependsOnTask("t1") {
		t.Error("expected t2.depends_on to gain t1")
	}
	if _, ok := r.Graph().Ancestors("t2")["t1"]; !ok {
		t.Error("expected rebuilt graph to reflect the new edge")
	}

	// Idempotent: the edge is now declared, so nothing new is added.
	if again := r.AddImplicitDependencies(); len(again) != 0 {
		t.Errorf("second pass should find nothing, got %+v", again)
	}
	if n := len(reader.DependsOn); n != 1 {
		t.Errorf("depends_on grew to %d entries, want 1", n)
	}
}

func TestIdentifyBottlenecks(t *testing.T) {
	hub := mkTask("hub", "Provision the shared environment", task.TypeExecute, 200)
	hub.RiskLevel = task.RiskHigh
	tasks := []*task.Task{hub}
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
		tasks = append(tasks, mkTask(id, "use "+id, task.TypeExecute, 5, "hub"))
	}
	r := newResolver(tasks...)

	bottlenecks, err := r.IdentifyBottlenecks()
	if err != nil {
		t.Fatalf("IdentifyBottlenecks: %v", err)
	}
	if len(bottlenecks) == 0 {
		t.Fatal("expected at least one bottleneck")
	}

	top := bottlenecks[0]
	if top.TaskID != "hub" {
		t.Fatalf("top bottleneck = %s, want hub", top.TaskID)
	}
	// 10x6 dependents + 50 critical path + 200/10 long estimate + 30 risk.
	if top.Score != 160 {
		t.Errorf("score = %.0f, want 160", top.Score)
	}
	if top.DependentCount != 6 || !top.OnCriticalPath {
		t.Errorf("dependents/critical = %d/%t, want 6/true", top.DependentCount, top.OnCriticalPath)
	}
	if len(top.Reasons) != 4 {
		t.Errorf("reasons = %v, want all four scoring rules", top.Reasons)
	}
	for i := 1; i < len(bottlenecks); i++ {
		if bottlenecks[i].Score > bottlenecks[i-1].Score {
			t.Errorf("bottlenecks not sorted by descending score at %d", i)
		}
	}
}

func TestIdentifyBottlenecksBelowThreshold(t *testing.T) {
	r := newResolver(
		mkTask("a", "small step", task.TypeExecute, 10),
		mkTask("b", "another small step", task.TypeExecute, 10),
	)

	bottlenecks, err := r.IdentifyBottlenecks()
	if err != nil {
		t.Fatalf("IdentifyBottlenecks: %v", err)
	}
	// Roots of a two-task plan score at most 50 for the critical path; only
	// the path member reaches the threshold.
	for _, b := range bottlenecks {
		if b.Score < DefaultThresholds().BottleneckScore {
			t.Errorf("bottleneck %s below threshold with score %.0f", b.TaskID, b.Score)
		}
	}
}

func TestSuggestMultipleRootsAndRedundantEdge(t *testing.T) {
	r := newResolver(
		mkTask("a", "fetch sources", task.TypeExecute, 10),
		mkTask("b", "compile sources", task.TypeExecute, 10, "a"),
		mkTask("c", "package artifact", task.TypeExecute, 10, "a", "b"),
		mkTask("x", "update docs", task.TypeWrite, 10),
	)

	suggestions, err := r.SuggestDependencyOptimizations()
	if err != nil {
		t.Fatalf("SuggestDependencyOptimizations: %v", err)
	}

	var sawRoots, sawRedundant bool
	for _, s := range suggestions {
		if strings.Contains(s, "independent entry tasks") {
			sawRoots = true
			if !strings.Contains(s, "2 ") {
				t.Errorf("root suggestion should count both roots: %q", s)
			}
		}
		if strings.Contains(s, "redundant") {
			sawRedundant = true
			if !strings.Contains(s, "compile sources") || !strings.Contains(s, "fetch sources") {
				t.Errorf("redundant suggestion should name the tasks involved: %q", s)
			}
		}
	}
	if !sawRoots {
		t.Errorf("missing multiple-roots suggestion in %v", suggestions)
	}
	if !sawRedundant {
		t.Errorf("missing redundant-edge suggestion in %v", suggestions)
	}
}

func TestSuggestSequentialChain(t *testing.T) {
	tasks := []*task.Task{mkTask("t0", "step 0", task.TypeExecute, 10)}
	for i := 1; i < 8; i++ {
		id := fmt.Sprintf("t%d", i)
		prev := fmt.Sprintf("t%d", i-1)
		tasks = append(tasks, mkTask(id, "step "+id, task.TypeExecute, 10, prev))
	}
	r := newResolver(tasks...)

	suggestions, err := r.SuggestDependencyOptimizations()
	if err != nil {
		t.Fatalf("SuggestDependencyOptimizations: %v", err)
	}
	var saw bool
	for _, s := range suggestions {
		if strings.Contains(s, "overly sequential") {
			saw = true
		}
	}
	if !saw {
		t.Errorf("missing overly-sequential suggestion in %v", suggestions)
	}
}

func TestSuggestFanout(t *testing.T) {
	hub := mkTask("hub", "build the toolchain", task.TypeExecute, 10)
	tasks := []*task.Task{hub}
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		tasks = append(tasks, mkTask(id, "consume "+id, task.TypeExecute, 10, "hub"))
	}
	r := newResolver(tasks...)

	suggestions, err := r.SuggestDependencyOptimizations()
	if err != nil {
		t.Fatalf("SuggestDependencyOptimizations: %v", err)
	}
	var saw bool
	for _, s := range suggestions {
		if strings.Contains(s, "transitive dependents") && strings.Contains(s, "build the toolchain") {
			saw = true
		}
	}
	if !saw {
		t.Errorf("missing fanout suggestion in %v", suggestions)
	}
}

func TestSuggestNothingForBalancedPlan(t *testing.T) {
	r := newResolver(
		mkTask("a", "prepare", task.TypeExecute, 10),
		mkTask("b", "part one", task.TypeExecute, 10, "a"),
		mkTask("c", "part two", task.TypeExecute, 10, "a"),
		mkTask("d", "part three", task.TypeExecute, 10, "a"),
	)

	suggestions, err := r.SuggestDependencyOptimizations()
	if err != nil {
		t.Fatalf("SuggestDependencyOptimizations: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", suggestions)
	}
}

func TestValidateTimeEstimatesPerTaskBounds(t *testing.T) {
	r := newResolver(
		mkTask("fast", "blink", task.TypeExecute, 1),
		mkTask("slow", "rebuild the world", task.TypeExecute, 900, "fast"),
		mkTask("fine", "normal work", task.TypeExecute, 60, "fast"),
	)

	warnings, err := r.ValidateTimeEstimates()
	if err != nil {
		t.Fatalf("ValidateTimeEstimates: %v", err)
	}

	var sawShort, sawLong bool
	for _, w := range warnings {
		if strings.Contains(w, "unrealistically short") && strings.Contains(w, "blink") {
			sawShort = true
		}
		if strings.Contains(w, "too long") && strings.Contains(w, "rebuild the world") {
			sawLong = true
		}
	}
	if !sawShort || !sawLong {
		t.Errorf("warnings = %v, want short and long findings", warnings)
	}
}

func TestValidateTimeEstimatesParallelizationRatio(t *testing.T) {
	var wide []*task.Task
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		wide = append(wide, mkTask(id, "work "+id, task.TypeExecute, 10))
	}
	warnings, err := newResolver(wide...).ValidateTimeEstimates()
	if err != nil {
		t.Fatalf("ValidateTimeEstimates: %v", err)
	}
	var saw bool
	for _, w := range warnings {
		if strings.Contains(w, "High parallelization potential") && strings.Contains(w, "90s") {
			saw = true
		}
	}
	if !saw {
		t.Errorf("warnings = %v, want high-parallelization finding with 90s savings", warnings)
	}

	chain := []*task.Task{
		mkTask("a", "first", task.TypeExecute, 100),
		mkTask("b", "second", task.TypeExecute, 100, "a"),
		mkTask("c", "third", task.TypeExecute, 100, "b"),
	}
	warnings, err = newResolver(chain...).ValidateTimeEstimates()
	if err != nil {
		t.Fatalf("ValidateTimeEstimates: %v", err)
	}
	saw = false
	for _, w := range warnings {
		if strings.Contains(w, "highly sequential") {
			saw = true
		}
	}
	if !saw {
		t.Errorf("warnings = %v, want highly-sequential finding", warnings)
	}
}

func TestValidateTimeEstimatesDrift(t *testing.T) {
	p := planOf(
		mkTask("a", "one", task.TypeExecute, 50),
		mkTask("b", "two", task.TypeExecute, 50, "a"),
	)
	p.EstimatedTotalTime = 500
	r := New(p, DefaultThresholds(), nil)

	warnings, err := r.ValidateTimeEstimates()
	if err != nil {
		t.Fatalf("ValidateTimeEstimates: %v", err)
	}
	var saw bool
	for _, w := range warnings {
		if strings.Contains(w, "declares 500s") && strings.Contains(w, "sum to 100s") {
			saw = true
		}
	}
	if !saw {
		t.Errorf("warnings = %v, want drift finding", warnings)
	}
}

func TestValidateTimeEstimatesCleanPlan(t *testing.T) {
	warnings, err := newResolver(
		mkTask("a", "prepare", task.TypeExecute, 5),
		mkTask("b", "left", task.TypeExecute, 5, "a"),
		mkTask("c", "right", task.TypeExecute, 5, "a"),
		mkTask("d", "finish", task.TypeExecute, 5, "b", "c"),
	).ValidateTimeEstimates()
	if err != nil {
		t.Fatalf("ValidateTimeEstimates: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestReport(t *testing.T) {
	r := newResolver(
		withFilepath(mkTask("t1", "Create data.csv", task.TypeWrite, 30), "data.csv"),
		withFilepath(mkTask("t2", "Read data.csv", task.TypeRead, 30), "data.csv"),
		mkTask("t3", "Summarize results", task.TypeWrite, 30, "t2"),
	)

	report, err := r.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Statistics.TaskCount != 3 {
		t.Errorf("task count = %d, want 3", report.Statistics.TaskCount)
	}
	if len(report.ImplicitDependencies) != 1 {
		t.Errorf("implicit dependencies = %+v, want one", report.ImplicitDependencies)
	}
	if len(report.ParallelBatches) == 0 {
		t.Error("expected batches in the report")
	}
}
