package script

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/morphic/pkg/match"
	"github.com/Faultbox/morphic/pkg/mesh"
	"github.com/Faultbox/morphic/pkg/value"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	opts := match.DefaultOptions()
	opts.CheckInvariants = true
	return NewEngine(match.New(zaptest.NewLogger(t), opts), time.Second)
}

func mustEval(t *testing.T, e *Engine, source string) value.Value {
	t.Helper()
	v, evalErrs, err := e.Evaluate(source)
	if err != nil {
		t.Fatalf("Evaluate(%q) fatal error = %v", source, err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("Evaluate(%q) eval errors = %v", source, evalErrs)
	}
	return v
}

func meshOf(t *testing.T, v value.Value) *mesh.Mesh {
	t.Helper()
	m, ok := v.(value.Mesh)
	if !ok {
		t.Fatalf("value %T is not a mesh", v)
	}
	return m.M
}

func TestEvaluateEmpty(t *testing.T) {
	e := newEngine(t)
	for _, src := range []string{"", "   \n\t "} {
		if v := mustEval(t, e, src); v != nil {
			t.Errorf("Evaluate(%q) = %v, want nil", src, v)
		}
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	e := newEngine(t)
	v := mustEval(t, e, "(def x 10)\n(def y 20)\n(+ x y)")
	if v != value.Number(30) {
		t.Errorf("Evaluate() = %v, want 30", v)
	}
}

func TestEvaluateParseError(t *testing.T) {
	e := newEngine(t)
	v, evalErrs, err := e.Evaluate("(polygon 3")
	if err != nil {
		t.Fatalf("Evaluate() fatal error = %v", err)
	}
	if v != nil || len(evalErrs) == 0 {
		t.Errorf("Evaluate() = %v, %v, want eval errors", v, evalErrs)
	}
}

func TestEvaluateRankErrorSurfaces(t *testing.T) {
	e := newEngine(t)
	_, evalErrs, err := e.Evaluate("(uprank (polygon 3))")
	if err != nil {
		t.Fatalf("Evaluate() fatal error = %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("Evaluate() = no eval errors, want rank error")
	}
	if !strings.Contains(evalErrs[0].Message, "already has surfaces") {
		t.Errorf("eval error = %q, want rank precondition", evalErrs[0].Message)
	}
}

func TestEvaluateUnconvertibleResult(t *testing.T) {
	e := newEngine(t)
	_, _, err := e.Evaluate(`"just a string"`)
	if err == nil || !strings.Contains(err.Error(), "scene value") {
		t.Errorf("Evaluate() error = %v, want scene value error", err)
	}
}

func TestEvaluateList(t *testing.T) {
	e := newEngine(t)
	v := mustEval(t, e, "(list (polygon 3) (outline 5) 2)")
	l, ok := v.(value.List)
	if !ok || len(l) != 3 {
		t.Fatalf("Evaluate() = %#v, want list of 3", v)
	}
	if got := meshOf(t, l[0]).Rank(); got != mesh.RankSurface {
		t.Errorf("item 0 rank = %v, want surface", got)
	}
	if got := meshOf(t, l[1]).Rank(); got != mesh.RankCurve {
		t.Errorf("item 1 rank = %v, want curve", got)
	}
	if l[2] != value.Number(2) {
		t.Errorf("item 2 = %v, want 2", l[2])
	}
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	_, _, err := waitWithTimeout(make(chan evalResult), 10*time.Millisecond, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("waitWithTimeout() = %v, want timeout", err)
	}
}

func TestEvaluateBusy(t *testing.T) {
	e := newEngine(t)
	e.running.Store(MaxRunning)
	if _, _, err := e.Evaluate("(+ 1 2)"); !errors.Is(err, ErrBusy) {
		t.Errorf("Evaluate() = %v, want ErrBusy", err)
	}
	if got := e.running.Load(); got != MaxRunning {
		t.Errorf("running = %d, want %d", got, MaxRunning)
	}

	e.running.Store(MaxRunning - 1)
	if v := mustEval(t, e, "(+ 1 2)"); v != value.Number(3) {
		t.Errorf("Evaluate() = %v, want 3", v)
	}
}

func TestWaitDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)
	ch := make(chan evalResult, 1)
	ch <- evalResult{value: value.Number(1)}
	_, _, err := waitWithTimeout(ch, time.Second, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Errorf("waitWithTimeout() = %v, want superseded", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"line 2: bad thing", 2, "bad thing"},
		{"some generic error", 0, "some generic error"},
	}
	for _, tt := range tests {
		got := parseZygomysError(errString(tt.msg))
		if len(got) != 1 || got[0].Line != tt.wantLine || got[0].Message != tt.wantMsg {
			t.Errorf("parseZygomysError(%q) = %+v, want line %d %q", tt.msg, got, tt.wantLine, tt.wantMsg)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestEvalErrorString(t *testing.T) {
	if got := (EvalError{Line: 3, Message: "boom"}).Error(); got != "line 3: boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := (EvalError{Message: "boom"}).Error(); got != "boom" {
		t.Errorf("Error() = %q", got)
	}
}
