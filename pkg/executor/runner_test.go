package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/device/mock"
	"github.com/rocketplan/uiflow/pkg/flow"
)

const loginScreen = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node text="" resource-id="" class="android.widget.FrameLayout" content-desc="" bounds="[0,0][1080,1920]" clickable="false">
    <node text="Login" resource-id="com.app:id/login_btn" class="android.widget.Button" content-desc="" bounds="[0,0][120,90]" clickable="true"/>
    <node text="" resource-id="com.app:id/username" class="android.widget.EditText" content-desc="Username" bounds="[10,100][310,160]" clickable="true"/>
    <node text="Broken" resource-id="com.app:id/broken" class="android.widget.Button" content-desc="" bounds="garbage" clickable="true"/>
  </node>
</hierarchy>`

// noSleep records wait durations instead of sleeping.
type noSleep struct {
	waits []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.waits = append(n.waits, d)
	return ctx.Err()
}

func newTestRunner(b core.Bridge, lookup flow.LookupFunc) (*Runner, *noSleep, *bytes.Buffer) {
	ns := &noSleep{}
	var out bytes.Buffer
	r := New(b, Config{Lookup: lookup, Sleep: ns.sleep, Out: &out})
	return r, ns, &out
}

func mapLookup(m map[string]string) flow.LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestRunner_TapByText(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, out := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[{"action":"tap","text":"Login"}]`), "login.json")

	if res.State != core.StateCompleted {
		t.Fatalf("State = %v, want completed (err: %v)", res.State, res.Err)
	}
	taps := b.Taps()
	if len(taps) != 1 || taps[0] != [2]int{60, 45} {
		t.Errorf("taps = %v, want [[60 45]]", taps)
	}
	if res.ID == "" {
		t.Error("expected run ID")
	}
	if r.State() != core.StateCompleted {
		t.Errorf("runner State() = %v", r.State())
	}
	for _, want := range []string{"[info] Running flow from login.json with 1 steps.", "[step 1] tap", "[done] Flow complete."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunner_WaitThenTap(t *testing.T) {
	screen := `<hierarchy rotation="0"><node text="Go" bounds="[10,20][110,70]" clickable="true"/></hierarchy>`
	b := mock.New(screen)
	r, ns, _ := newTestRunner(b, nil)

	doc := `[{"action":"wait","seconds":1},{"action":"tap","text":"Go"}]`
	res := r.RunDocument(context.Background(), []byte(doc), "go.json")

	if res.State != core.StateCompleted {
		t.Fatalf("State = %v, want completed (err: %v)", res.State, res.Err)
	}
	if len(ns.waits) != 1 || ns.waits[0] != time.Second {
		t.Errorf("waits = %v, want [1s]", ns.waits)
	}
	taps := b.Taps()
	if len(taps) != 1 || taps[0] != [2]int{60, 45} {
		t.Errorf("taps = %v, want [[60 45]]", taps)
	}
	if res.Warnings != 0 || res.StepsRun != 2 {
		t.Errorf("Warnings = %d, StepsRun = %d", res.Warnings, res.StepsRun)
	}
}

func TestFailed_Classification(t *testing.T) {
	tests := []struct {
		err    *core.ExecutionError
		status core.StepStatus
	}{
		{core.ErrElementNotFound, core.StatusWarned},
		{core.ErrIndexNotFound, core.StatusWarned},
		{core.ErrMalformedSnapshot, core.StatusWarned},
		{core.ErrBridgeUnavailable, core.StatusErrored},
		{core.ErrDeviceDisconnected, core.StatusErrored},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			res := failed(tt.err, "step %d", 3)
			if res.status != tt.status {
				t.Errorf("status = %v, want %v", res.status, tt.status)
			}
			if res.message != "step 3" {
				t.Errorf("message = %q", res.message)
			}
			if !errors.Is(res.err, tt.err) {
				t.Errorf("err = %v, want it to match %s", res.err, tt.err.Code)
			}
		})
	}

	res := bridgeFailure(errors.New("exit status 1"))
	if res.status != core.StatusErrored || !strings.Contains(res.message, "exit status 1") {
		t.Errorf("bridgeFailure = %+v", res)
	}
}

func TestRunner_SelectorNotFoundWarns(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, out := newTestRunner(b, nil)

	doc := `[{"action":"tap","text":"Nope"},{"action":"back"}]`
	res := r.RunDocument(context.Background(), []byte(doc), "f.json")

	if res.State != core.StateCompleted {
		t.Fatalf("State = %v, want completed", res.State)
	}
	if res.Warnings != 1 || res.StepsRun != 2 {
		t.Errorf("Warnings = %d, StepsRun = %d", res.Warnings, res.StepsRun)
	}
	if len(b.Taps()) != 0 {
		t.Errorf("unexpected taps %v", b.Taps())
	}
	if !strings.Contains(out.String(), `[warn] selector not found: {text="Nope"}`) {
		t.Errorf("missing warning:\n%s", out.String())
	}
	if keys := b.Ops("keyevent"); len(keys) != 1 || keys[0].Args[0] != "4" {
		t.Errorf("keyevents = %v, want one KEYCODE_BACK", keys)
	}
}

func TestRunner_MalformedBoundsWarns(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, _ := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[{"action":"tap","id_contains":"broken"}]`), "f.json")

	if res.State != core.StateCompleted || res.Warnings != 1 {
		t.Errorf("State = %v, Warnings = %d", res.State, res.Warnings)
	}
	if len(b.Taps()) != 0 {
		t.Errorf("should not tap a node with malformed bounds, got %v", b.Taps())
	}
}

func TestRunner_InputInterpolatesAndEscapes(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, _ := newTestRunner(b, mapLookup(map[string]string{"APP_USER": "jane doe"}))

	doc := `[
		{"action":"input","desc_selector":"Username","value":"${APP_USER}"},
		{"action":"input","id_contains":"username","value":"${MISSING:-fallback value}"},
		{"action":"input","text_selector":"Nope","value":"never typed"}
	]`
	res := r.RunDocument(context.Background(), []byte(doc), "f.json")

	if res.State != core.StateCompleted {
		t.Fatalf("State = %v, err = %v", res.State, res.Err)
	}
	texts := b.Texts()
	want := []string{"jane%sdoe", "fallback%svalue"}
	if len(texts) != len(want) {
		t.Fatalf("texts = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("text %d = %q, want %q", i, texts[i], want[i])
		}
	}
	if taps := b.Taps(); len(taps) != 2 || taps[0] != [2]int{160, 130} {
		t.Errorf("taps = %v", taps)
	}
	if res.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", res.Warnings)
	}
}

func TestRunner_InputMissingVariableTypesEmpty(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, _ := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[{"action":"input","id_contains":"username","value":"${UNSET}"}]`), "f.json")
	if res.State != core.StateCompleted {
		t.Fatalf("State = %v", res.State)
	}
	if texts := b.Texts(); len(texts) != 1 || texts[0] != "" {
		t.Errorf("texts = %q, want one empty input", texts)
	}
}

func TestRunner_StartAppAndWait(t *testing.T) {
	b := mock.New(loginScreen)
	r, ns, _ := newTestRunner(b, nil)

	doc := `[
		{"action":"start_app","package":"com.example","activity":".MainActivity"},
		{"action":"wait","seconds":2.5},
		{"action":"wait"}
	]`
	res := r.RunDocument(context.Background(), []byte(doc), "f.json")

	if res.State != core.StateCompleted {
		t.Fatalf("State = %v, err = %v", res.State, res.Err)
	}
	if ops := b.Ops("launch"); len(ops) != 1 || ops[0].Args[0] != "com.example/.MainActivity" {
		t.Errorf("launch = %v", ops)
	}
	if len(ns.waits) != 2 || ns.waits[0] != 2500*time.Millisecond || ns.waits[1] != time.Second {
		t.Errorf("waits = %v", ns.waits)
	}
}

func TestRunner_TapFromSummary(t *testing.T) {
	dir := t.TempDir()
	summary := "# Clickable nodes for capture 001 (home)\n" +
		"# Format: idx | text | desc | id | class | bounds\n" +
		"01 | text='A' | desc=<empty> | id=<none> | class=<none> | bounds=[0,0][100,100]\n" +
		"02 | text='B' | desc=<empty> | id=<none> | class=<none> | bounds=[10,20][30,40] | long-clickable\n" +
		"03 | text='C' | desc=<empty> | id=<none> | class=<none> | bounds=<unknown>"
	if err := os.WriteFile(filepath.Join(dir, "001_home_clickables.txt"), []byte(summary), 0o644); err != nil {
		t.Fatal(err)
	}
	flowPath := filepath.Join(dir, "flow.json")
	doc := `[
		{"action":"tap_from_summary","summary":"001_home_clickables.txt","index":2},
		{"action":"tap_from_summary","summary":"001_home_clickables.txt","index":99},
		{"action":"tap_from_summary","summary":"001_home_clickables.txt","index":3},
		{"action":"tap_from_summary","summary":"missing.txt","index":1}
	]`
	if err := os.WriteFile(flowPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	b := mock.New(loginScreen)
	r, _, out := newTestRunner(b, nil)
	res := r.RunFile(context.Background(), flowPath)

	if res.State != core.StateCompleted {
		t.Fatalf("State = %v, err = %v", res.State, res.Err)
	}
	if taps := b.Taps(); len(taps) != 1 || taps[0] != [2]int{20, 30} {
		t.Errorf("taps = %v, want [[20 30]]", taps)
	}
	if res.Warnings != 3 {
		t.Errorf("Warnings = %d, want 3", res.Warnings)
	}
	if !strings.Contains(out.String(), "[warn] index 99 not found in 001_home_clickables.txt") {
		t.Errorf("missing index warning:\n%s", out.String())
	}
}

func TestRunner_UnknownActionWarns(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, out := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[{"action":"swipe"},{"foo":"bar"}]`), "f.json")

	if res.State != core.StateCompleted || res.Warnings != 2 {
		t.Errorf("State = %v, Warnings = %d", res.State, res.Warnings)
	}
	if !strings.Contains(out.String(), "[warn] unknown action: swipe") {
		t.Errorf("missing warning:\n%s", out.String())
	}
	for _, c := range b.Calls() {
		if c.Op != "get-state" {
			t.Errorf("unexpected bridge call %v", c)
		}
	}
}

func TestRunner_NotAListAborts(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, _ := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`{"action":"back"}`), "f.json")

	if res.State != core.StateAborted {
		t.Fatalf("State = %v, want aborted", res.State)
	}
	if !errors.Is(res.Err, core.ErrInvalidFlow) {
		t.Errorf("Err = %v, want ErrInvalidFlow", res.Err)
	}
	if res.StepsRun != 0 || len(b.Ops("keyevent")) != 0 {
		t.Error("no step should run for an invalid document")
	}
}

func TestRunner_NoDeviceAborts(t *testing.T) {
	b := mock.New(loginScreen)
	b.State = "offline"
	r, _, _ := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[{"action":"back"}]`), "f.json")

	if res.State != core.StateAborted {
		t.Fatalf("State = %v, want aborted", res.State)
	}
	if !errors.Is(res.Err, core.ErrDeviceDisconnected) {
		t.Errorf("Err = %v, want ErrDeviceDisconnected", res.Err)
	}
	if len(b.Calls()) != 1 {
		t.Errorf("only the state check should run, got %v", b.Calls())
	}
}

func TestRunner_BridgeUnavailableAborts(t *testing.T) {
	b := mock.New(loginScreen)
	b.StateErr = errors.New("exec: \"adb\": executable file not found in $PATH")
	r, _, _ := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[]`), "f.json")
	if res.State != core.StateAborted || !errors.Is(res.Err, core.ErrBridgeUnavailable) {
		t.Errorf("State = %v, Err = %v", res.State, res.Err)
	}
}

func TestRunner_BridgeFailureDuringStepAborts(t *testing.T) {
	b := mock.New(loginScreen)
	b.FailOn = map[string]error{"tap": errors.New("exit status 1")}
	r, _, _ := newTestRunner(b, nil)

	doc := `[{"action":"tap","text":"Login"},{"action":"back"}]`
	res := r.RunDocument(context.Background(), []byte(doc), "f.json")

	if res.State != core.StateAborted {
		t.Fatalf("State = %v, want aborted", res.State)
	}
	if !errors.Is(res.Err, core.ErrBridgeUnavailable) {
		t.Errorf("Err = %v", res.Err)
	}
	if res.StepsRun != 1 || len(b.Ops("keyevent")) != 0 {
		t.Errorf("run should stop at the failing step, StepsRun = %d", res.StepsRun)
	}
}

func TestRunner_UnparsableSnapshotWarns(t *testing.T) {
	b := mock.New("<hierarchy><node>")
	r, _, _ := newTestRunner(b, nil)

	res := r.RunDocument(context.Background(), []byte(`[{"action":"tap","text":"Login"}]`), "f.json")
	if res.State != core.StateCompleted || res.Warnings != 1 {
		t.Errorf("State = %v, Warnings = %d", res.State, res.Warnings)
	}
}

func TestRunner_FreshSnapshotPerTap(t *testing.T) {
	second := strings.Replace(loginScreen, `bounds="[0,0][120,90]"`, `bounds="[200,200][400,300]"`, 1)
	b := mock.New(loginScreen, second)
	r, _, _ := newTestRunner(b, nil)

	doc := `[{"action":"tap","text":"Login"},{"action":"tap","text":"Login"}]`
	res := r.RunDocument(context.Background(), []byte(doc), "f.json")
	if res.State != core.StateCompleted {
		t.Fatalf("State = %v", res.State)
	}
	taps := b.Taps()
	if len(taps) != 2 || taps[0] != [2]int{60, 45} || taps[1] != [2]int{300, 250} {
		t.Errorf("taps = %v", taps)
	}
}

func TestRunner_CancelledContextAborts(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, _ := newTestRunner(b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.RunDocument(ctx, []byte(`[{"action":"back"}]`), "f.json")
	if res.State != core.StateAborted || !errors.Is(res.Err, context.Canceled) {
		t.Errorf("State = %v, Err = %v", res.State, res.Err)
	}
	if len(b.Ops("keyevent")) != 0 {
		t.Error("no step should run after cancellation")
	}
}

func TestRunner_StepCallbacks(t *testing.T) {
	b := mock.New(loginScreen)
	var started []int
	var statuses []core.StepStatus
	r := New(b, Config{
		Sleep:       (&noSleep{}).sleep,
		OnStepStart: func(idx int, desc string) { started = append(started, idx) },
		OnStepComplete: func(idx int, desc string, status core.StepStatus, ms int64, msg string) {
			statuses = append(statuses, status)
		},
	})

	res := r.RunDocument(context.Background(), []byte(`[{"action":"back"},{"action":"tap","text":"Nope"}]`), "f.json")
	if res.State != core.StateCompleted {
		t.Fatalf("State = %v", res.State)
	}
	if len(started) != 2 || started[1] != 2 {
		t.Errorf("started = %v", started)
	}
	if len(statuses) != 2 || statuses[0] != core.StatusPassed || statuses[1] != core.StatusWarned {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestRunner_RunParsedFlow(t *testing.T) {
	b := mock.New(loginScreen)
	r, _, _ := newTestRunner(b, nil)

	if r.State() != core.StateIdle {
		t.Errorf("initial State() = %v, want idle", r.State())
	}

	f := &flow.Flow{Steps: []flow.Step{
		&flow.TapStep{BaseStep: flow.BaseStep{StepType: flow.StepTap}, Selector: flow.Selector{Text: flow.Str("Login")}},
	}}
	res := r.Run(context.Background(), f)
	if res.State != core.StateCompleted || len(b.Taps()) != 1 {
		t.Errorf("State = %v, taps = %v", res.State, b.Taps())
	}
	if len(b.Ops("get-state")) != 0 {
		t.Error("Run should not re-check connectivity")
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("zero sleep error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled sleep error = %v", err)
	}
}
