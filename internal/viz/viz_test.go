package viz

import (
	"errors"
	"strings"
	"testing"

	"github.com/taskforge-dev/taskforge/internal/graph"
	"github.com/taskforge-dev/taskforge/internal/task"
)

func sampleGraph() *graph.Graph {
	return graph.New([]*task.Task{
		{ID: "fetch", Description: "Fetch sources", Type: task.TypeExecute, EstimatedTime: 30},
		{ID: "build", Description: "Build binaries", Type: task.TypeExecute, EstimatedTime: 120, DependsOn: []string{"fetch"}},
		{ID: "test", Description: "Run tests", Type: task.TypeValidate, EstimatedTime: 60, DependsOn: []string{"build"}},
	})
}

func TestText(t *testing.T) {
	out, err := Text(sampleGraph())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}

	for _, want := range []string{
		"Level 1:",
		"Level 2:",
		"Level 3:",
		"[fetch] Fetch sources (30s, execute)",
		"[build] Build binaries (120s, execute)",
		"[test] Run tests (60s, validate)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Level 1:") > strings.Index(out, "[fetch]") {
		t.Error("task line should follow its level header")
	}
}

func TestTextFailsOnInvalidGraph(t *testing.T) {
	g := graph.New([]*task.Task{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	})
	if _, err := Text(g); !errors.Is(err, graph.ErrInvalidGraph) {
		t.Errorf("Text error = %v, want ErrInvalidGraph", err)
	}
}

func TestMermaid(t *testing.T) {
	out := Mermaid(sampleGraph())

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Errorf("missing graph TD header:\n%s", out)
	}
	for _, want := range []string{
		`fetch["Fetch sources"]`,
		"fetch --> build",
		"build --> test",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}
}

func TestMermaidSanitizesIDs(t *testing.T) {
	g := graph.New([]*task.Task{
		{ID: "task-1", Description: `say "hi"`},
		{ID: "task.2", DependsOn: []string{"task-1"}},
	})
	out := Mermaid(g)

	if !strings.Contains(out, "task_1 --> task_2") {
		t.Errorf("expected sanitized edge ids:\n%s", out)
	}
	if strings.Contains(out, `"say "hi""`) {
		t.Errorf("double quotes must be escaped in labels:\n%s", out)
	}
	if !strings.Contains(out, "say 'hi'") {
		t.Errorf("expected quote-escaped label:\n%s", out)
	}
}

func TestDOT(t *testing.T) {
	out := DOT(sampleGraph())

	if !strings.HasPrefix(out, "digraph tasks {\n") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("malformed digraph wrapper:\n%s", out)
	}
	for _, want := range []string{
		`"fetch" [label="Fetch sources"];`,
		`"fetch" -> "build";`,
		`"build" -> "test";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyGraph(t *testing.T) {
	g := graph.New(nil)

	out, err := Text(g)
	if err != nil || out != "" {
		t.Errorf("Text(empty) = %q, %v", out, err)
	}
	if m := Mermaid(g); m != "graph TD\n" {
		t.Errorf("Mermaid(empty) = %q", m)
	}
	if d := DOT(g); !strings.Contains(d, "digraph tasks") {
		t.Errorf("DOT(empty) = %q", d)
	}
}
