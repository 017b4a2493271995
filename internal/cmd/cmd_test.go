package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/report"
)

const fixtureSteps = `Step C must be finished before step A can begin.
Step C must be finished before step F can begin.
Step A must be finished before step B can begin.
Step A must be finished before step D can begin.
Step B must be finished before step E can begin.
Step D must be finished before step E can begin.
Step F must be finished before step E can begin.
`

const fixturePlan = `workers: 1
time_offset: 0
steps:
  - id: C
  - id: A
    depends_on: [C]
  - id: F
    depends_on: [C]
  - id: B
    depends_on: [A]
  - id: D
    depends_on: [A]
  - id: E
    depends_on: [B, D, F]
`

const cycleSteps = `Step X must be finished before step Y can begin.
Step Y must be finished before step X can begin.
`

// executeCommand runs a fresh command tree with args and returns captured
// stdout and stderr. Configuration is isolated from the user's own files.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

// writeFile creates a file in a temp directory and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "stepsched" {
		t.Errorf("root.Use = %q, want %q", root.Use, "stepsched")
	}

	// Compare by Name(), not Use which includes args
	cmdMap := make(map[string]bool)
	for _, cmd := range root.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range []string{"order", "run", "replay", "watch", "config"} {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

// -----------------------------------------------------------------------------
// order
// -----------------------------------------------------------------------------

func TestOrderCommand(t *testing.T) {
	path := writeFile(t, "steps.txt", fixtureSteps)

	out, _, err := executeCommand(t, "", "order", path)
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	if out != "CABDFE\n" {
		t.Errorf("output = %q, want %q", out, "CABDFE\n")
	}
}

func TestOrderCommand_Stdin(t *testing.T) {
	for _, args := range [][]string{{"order"}, {"order", "-"}} {
		out, _, err := executeCommand(t, fixtureSteps, args...)
		if err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
		if out != "CABDFE\n" {
			t.Errorf("%v output = %q, want %q", args, out, "CABDFE\n")
		}
	}
}

func TestOrderCommand_YAMLStdin(t *testing.T) {
	out, _, err := executeCommand(t, fixturePlan, "order", "--input-format", "yaml")
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	if out != "CABDFE\n" {
		t.Errorf("output = %q, want %q", out, "CABDFE\n")
	}
}

func TestOrderCommand_Levels(t *testing.T) {
	path := writeFile(t, "steps.txt", fixtureSteps)

	out, _, err := executeCommand(t, "", "order", "--levels", path)
	if err != nil {
		t.Fatalf("order --levels failed: %v", err)
	}
	want := "  0 C\n  1 A F\n  2 B D\n  3 E\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestOrderCommand_JSON(t *testing.T) {
	path := writeFile(t, "steps.txt", fixtureSteps)

	out, _, err := executeCommand(t, "", "order", "--format", "json", path)
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	var got struct {
		Source string `json:"source"`
		Order  string `json:"order"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Order != "CABDFE" || got.Source != path {
		t.Errorf("got %+v", got)
	}
}

func TestOrderCommand_Cycle(t *testing.T) {
	path := writeFile(t, "cycle.txt", cycleSteps)

	out, _, err := executeCommand(t, "", "order", path)
	if !errors.Is(err, errors.ErrDependencyCycle) {
		t.Fatalf("error = %v, want dependency cycle", err)
	}
	if out != "" {
		t.Errorf("a cyclic graph must not print an order, got %q", out)
	}
}

func TestOrderCommand_MalformedLine(t *testing.T) {
	path := writeFile(t, "bad.txt", "Step C must be finished before step A can begin.\nStep C before A\n")

	_, _, err := executeCommand(t, "", "order", path)
	var malformed *errors.MalformedEdgeError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedEdgeError", err)
	}
	if malformed.Line != 2 || malformed.Source != path {
		t.Errorf("Line = %d, Source = %q, want 2, %q", malformed.Line, malformed.Source, path)
	}
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func TestRunCommand(t *testing.T) {
	path := writeFile(t, "steps.txt", fixtureSteps)

	tests := []struct {
		name        string
		args        []string
		wantOrder   string
		wantElapsed string
	}{
		{"defaults", nil, "CAFBDE", "253"},
		{"two workers no offset", []string{"-w", "2", "-o", "0"}, "CABFDE", "15"},
		{"one worker no offset", []string{"--workers", "1", "--offset", "0"}, "CABDFE", "21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run"}, tt.args...)
			args = append(args, path)

			out, _, err := executeCommand(t, "", args...)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if !strings.Contains(out, "order    "+tt.wantOrder) {
				t.Errorf("output missing order %s:\n%s", tt.wantOrder, out)
			}
			if !strings.Contains(out, "elapsed  "+tt.wantElapsed) {
				t.Errorf("output missing elapsed %s:\n%s", tt.wantElapsed, out)
			}
		})
	}
}

func TestRunCommand_Trace(t *testing.T) {
	out, _, err := executeCommand(t, fixtureSteps, "run", "-w", "2", "-o", "0", "--trace")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"stdin", "STEP", "WORKER", "START", "END"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCommand_Progress(t *testing.T) {
	out, errOut, err := executeCommand(t, fixtureSteps, "run", "-w", "2", "-o", "0", "--progress")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "CABFDE") {
		t.Errorf("report missing from stdout:\n%s", out)
	}

	// Lines appear in simulation order.
	last := -1
	for _, want := range []string{
		"stdin: t=0 C dispatched to W0 until 3\n",
		"stdin: t=3 C completed, unblocks A F\n",
		"stdin: t=3 A dispatched to W0 until 4\n",
		"stdin: t=3 F dispatched to W1 until 9\n",
		"stdin: t=4 A completed, unblocks B D\n",
		"stdin: t=15 E completed\n",
	} {
		i := strings.Index(errOut, want)
		if i < 0 {
			t.Fatalf("stderr missing %q:\n%s", want, errOut)
		}
		if i < last {
			t.Errorf("%q printed out of order:\n%s", want, errOut)
		}
		last = i
	}
	if strings.Contains(out, "dispatched to") {
		t.Errorf("progress leaked into stdout:\n%s", out)
	}
}

func TestRunCommand_NoProgressByDefault(t *testing.T) {
	_, errOut, err := executeCommand(t, fixtureSteps, "run")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.Contains(errOut, "dispatched to") {
		t.Errorf("stderr has progress without --progress:\n%s", errOut)
	}
}

func TestRunCommand_RepeatedStdin(t *testing.T) {
	out, _, err := executeCommand(t, fixtureSteps, "run", "-", "-")
	if err == nil || !strings.Contains(err.Error(), "standard input given 2 times") {
		t.Fatalf("error = %v, want repeated stdin error", err)
	}
	if out != "" {
		t.Errorf("nothing should be scheduled, got:\n%s", out)
	}
}

func TestRunCommand_PlanSettings(t *testing.T) {
	plan := writeFile(t, "plan.yaml", fixturePlan)

	// The plan asks for one worker and no offset.
	out, _, err := executeCommand(t, "", "run", "--format", "json", plan)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var got report.Summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Order != "CABDFE" || got.Elapsed != 21 || got.Workers != 1 {
		t.Errorf("got order %s elapsed %d workers %d, want CABDFE 21 1", got.Order, got.Elapsed, got.Workers)
	}

	// Flags win over the plan.
	out, _, err = executeCommand(t, "", "run", "--format", "json", "-w", "2", plan)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got = report.Summary{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Order != "CABFDE" || got.Elapsed != 15 || got.TimeOffset != 0 {
		t.Errorf("got order %s elapsed %d offset %d, want CABFDE 15 0", got.Order, got.Elapsed, got.TimeOffset)
	}
}

func TestRunCommand_MultipleFilesInArgumentOrder(t *testing.T) {
	good := writeFile(t, "good.txt", fixtureSteps)
	cycle := writeFile(t, "cycle.txt", cycleSteps)
	single := writeFile(t, "single.txt", "Step Q must be finished before step R can begin.\n")

	out, _, err := executeCommand(t, "", "run", "--format", "json", "-o", "0", good, cycle, single)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 inputs failed") {
		t.Fatalf("error = %v, want 1 of 3 inputs failed", err)
	}

	dec := json.NewDecoder(strings.NewReader(out))
	var summaries []report.Summary
	for {
		var s report.Summary
		if err := dec.Decode(&s); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("invalid JSON stream: %v\n%s", err, out)
		}
		summaries = append(summaries, s)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}

	var sources []string
	for _, s := range summaries {
		sources = append(sources, s.Source)
	}
	if diff := cmp.Diff([]string{good, cycle, single}, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
	if summaries[0].Order != "CABDFE" || summaries[0].Elapsed != 14 {
		t.Errorf("first = %s/%d, want CABDFE/14", summaries[0].Order, summaries[0].Elapsed)
	}
	if summaries[1].Error == "" {
		t.Error("second summary should carry the cycle error")
	}
	if diff := cmp.Diff([]string{"X", "Y"}, summaries[1].Pending); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
	if summaries[2].Order != "QR" || summaries[2].Elapsed != 35 {
		t.Errorf("third = %s/%d, want QR/35", summaries[2].Order, summaries[2].Elapsed)
	}
}

func TestRunCommand_SingleFailureReturnsCause(t *testing.T) {
	out, _, err := executeCommand(t, cycleSteps, "run")
	var cycleErr *errors.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("error = %v, want CycleError", err)
	}
	if !strings.Contains(out, "dependency cycle detected") {
		t.Errorf("report should describe the failure:\n%s", out)
	}
}

func TestRunCommand_InvalidFlags(t *testing.T) {
	path := writeFile(t, "steps.txt", fixtureSteps)

	tests := []struct {
		name string
		args []string
	}{
		{"zero workers", []string{"run", "-w", "0", path}},
		{"negative offset", []string{"run", "-o", "-1", path}},
		{"unknown format", []string{"run", "--format", "xml", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, "", tt.args...)
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}
}

func TestRunCommand_ConfigFile(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "scheduler:\n  workers: 2\n  time_offset: 0\noutput:\n  format: json\n")
	path := writeFile(t, "steps.txt", fixtureSteps)

	out, _, err := executeCommand(t, "", "--config", cfgPath, "run", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var got report.Summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Order != "CABFDE" || got.Elapsed != 15 {
		t.Errorf("got %s/%d, want CABFDE/15", got.Order, got.Elapsed)
	}
}

func TestRunCommand_InvalidConfigFile(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "scheduler:\n  workers: 0\n")
	path := writeFile(t, "steps.txt", fixtureSteps)

	_, _, err := executeCommand(t, "", "--config", cfgPath, "run", path)
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("error = %v, want invalid configuration", err)
	}
}

func TestRunCommand_EnvOverride(t *testing.T) {
	t.Setenv("STEPSCHED_SCHEDULER_WORKERS", "1")
	t.Setenv("STEPSCHED_SCHEDULER_TIME_OFFSET", "0")

	out, _, err := executeCommand(t, fixtureSteps, "run", "--format", "json")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var got report.Summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Order != "CABDFE" || got.Elapsed != 21 {
		t.Errorf("got %s/%d, want CABDFE/21", got.Order, got.Elapsed)
	}
}

func TestRunCommand_Logging(t *testing.T) {
	path := writeFile(t, "steps.txt", fixtureSteps)

	_, stderr, err := executeCommand(t, "", "--log-level", "debug", "run", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{`"msg":"run started"`, `"msg":"step dispatched"`, `"msg":"run drained"`} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %s:\n%s", want, stderr)
		}
	}

	logDir := t.TempDir()
	_, stderr, err = executeCommand(t, "", "--log-dir", logDir, "run", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("logging to a directory should leave stderr empty, got %q", stderr)
	}
	data, err := os.ReadFile(filepath.Join(logDir, "stepsched.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"source":"`+path+`"`) {
		t.Errorf("log entries should name the source:\n%s", data)
	}
}

// -----------------------------------------------------------------------------
// replay / watch
// -----------------------------------------------------------------------------

func TestReplayAndWatch_RejectStdin(t *testing.T) {
	for _, name := range []string{"replay", "watch"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := executeCommand(t, fixtureSteps, name, "-")
			if err == nil {
				t.Errorf("%s - should fail", name)
			}
		})
	}
}

func TestReplayAndWatch_RequireFile(t *testing.T) {
	for _, name := range []string{"replay", "watch"} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := executeCommand(t, "", name); err == nil {
				t.Errorf("%s without a file should fail", name)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// config
// -----------------------------------------------------------------------------

func TestConfigShow(t *testing.T) {
	out, _, err := executeCommand(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{
		"# Config file: (none - using defaults)",
		"workers: 5",
		"time_offset: 60",
		"cost: alphabet",
		"format: text",
		"level: info",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSet(t *testing.T) {
	out, _, err := executeCommand(t, "", "config", "set", "scheduler.workers", "3")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !strings.Contains(out, "Set scheduler.workers = 3") {
		t.Errorf("unexpected output:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "stepsched", "config.yaml"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "workers: 3") {
		t.Errorf("config file missing new value:\n%s", data)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown key", []string{"scheduler.speed", "2"}, "unknown configuration key"},
		{"not an integer", []string{"scheduler.workers", "many"}, "expected integer"},
		{"not a bool", []string{"output.trace", "yes"}, "expected true or false"},
		{"fails validation", []string{"scheduler.workers", "0"}, "invalid value for scheduler.workers"},
		{"unknown format", []string{"output.format", "xml"}, "invalid value for output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"config", "set"}, tt.args...)
			_, _, err := executeCommand(t, "", args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
			if _, statErr := os.Stat(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "stepsched", "config.yaml")); statErr == nil {
				t.Error("an invalid value must not be saved")
			}
		})
	}
}

func TestConfigInit(t *testing.T) {
	out, _, err := executeCommand(t, "", "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Created config file") {
		t.Errorf("unexpected output:\n%s", out)
	}

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "stepsched", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// The generated file must load cleanly.
	out, _, err = executeCommand(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if !strings.Contains(out, "workers: 5") {
		t.Errorf("generated config should carry defaults:\n%s", out)
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	// executeCommand points XDG_CONFIG_HOME at a fresh directory each call,
	// so create the file through an explicit directory instead.
	xdg := t.TempDir()
	if err := os.MkdirAll(filepath.Join(xdg, "stepsched"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(xdg, "stepsched", "config.yaml"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", xdg)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"config", "init"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %v, want already exists", err)
	}
}

func TestConfigPath(t *testing.T) {
	out, _, err := executeCommand(t, "", "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	for _, want := range []string{"Default path:", "Search paths:", "STEPSCHED_SCHEDULER_WORKERS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
