package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/hostproc/config"
	goerrors "github.com/kbukum/hostproc/errors"
	"github.com/kbukum/hostproc/process"
	"github.com/kbukum/hostproc/process/testutil"
	"github.com/kbukum/hostproc/provider"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// isolate keeps the CLI from reading config files or variables of the
// machine running the tests.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOSTPROC_LOGGING_LEVEL", "error")
}

// fakeHosts registers h as the only host, under the module name.
func fakeHosts(h *testutil.RecordingHost) hostRegistry {
	return func(_ *config.Config, opts ...process.InvokerOption) *provider.Registry[executor] {
		reg := provider.NewRegistry[executor]()
		reg.RegisterFactory(hostModule, func(map[string]any) (executor, error) {
			return process.NewAdapter(process.NewInvoker(h, named(hostModule, opts)...)), nil
		})
		return reg
	}
}

func runCLI(t *testing.T, h *testutil.RecordingHost, stdin string, args ...string) result {
	t.Helper()
	isolate(t)
	a := newApp()
	if h != nil {
		a.hosts = fakeHosts(h)
	}
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), a, args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func echoArgs(req testutil.Request) testutil.Result {
	return testutil.Result{Stdout: []byte(strings.Join(req.Args, " ") + "\n")}
}

func TestVersionCommand(t *testing.T) {
	res := runCLI(t, nil, "", "version")
	assert.Equal(t, 0, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "hostproc "), "got %q", res.stdout)

	res = runCLI(t, nil, "", "version", "--json")
	require.Equal(t, 0, res.code)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "platform")
}

func TestRootVersionFlag(t *testing.T) {
	res := runCLI(t, nil, "", "--version")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "hostproc")
}

func TestRun_Echo(t *testing.T) {
	h := testutil.NewRecordingHost().Respond(echoArgs)

	res := runCLI(t, h, "", "run", "--", "echo", "hello", "world")

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "hello world\n", res.stdout)
	assert.Empty(t, res.stderr)

	req, ok := h.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "echo", req.Program)
	assert.Equal(t, []string{"hello", "world"}, req.Args)
	assert.Equal(t, process.DefaultTimeout, req.Timeout)
	assert.Empty(t, req.Env)
	assert.Empty(t, req.Stdin)
}

func TestRun_ProgramFlagsAreNotParsed(t *testing.T) {
	h := testutil.NewRecordingHost().Respond(echoArgs)

	res := runCLI(t, h, "", "run", "ls", "-la", "--timeout", "5")

	require.Equal(t, 0, res.code, res.stderr)
	req, _ := h.LastRequest()
	assert.Equal(t, []string{"-la", "--timeout", "5"}, req.Args)
	assert.Equal(t, process.DefaultTimeout, req.Timeout)
}

func TestRun_Flags(t *testing.T) {
	h := testutil.NewRecordingHost()

	res := runCLI(t, h, "",
		"run", "--timeout", "250", "-e", "B=2", "--env", "A=1", "--env", "B=3", "--stdin", "hi",
		"--", "cat")

	require.Equal(t, 0, res.code, res.stderr)
	req, _ := h.LastRequest()
	assert.Equal(t, uint32(250), req.Timeout)
	assert.Equal(t, [][2]string{{"A", "1"}, {"B", "3"}}, req.Env)
	assert.Equal(t, []byte("hi"), req.Stdin)
	assert.Equal(t, []string{
		process.StepSetProgramName,
		process.StepAddEnvironment, process.StepAddEnvironment,
		process.StepSetTimeout, process.StepSetStdin, process.StepRun,
		process.StepGetStdoutLength, process.StepGetStdout,
		process.StepGetStderrLength, process.StepGetStderr,
	}, h.Steps())
}

func TestRun_InheritEnv(t *testing.T) {
	h := testutil.NewRecordingHost()
	t.Setenv("HOSTPROC_TEST_MARKER", "present")

	res := runCLI(t, h, "", "run", "--inherit-env", "--env", "HOSTPROC_TEST_MARKER=flag", "--", "env")

	require.Equal(t, 0, res.code, res.stderr)
	req, _ := h.LastRequest()
	env := map[string]string{}
	for _, kv := range req.Env {
		env[kv[0]] = kv[1]
	}
	assert.Equal(t, "flag", env["HOSTPROC_TEST_MARKER"])
	assert.Contains(t, env, "HOME")
}

func TestRun_StdinFile(t *testing.T) {
	t.Run("from stdin", func(t *testing.T) {
		h := testutil.NewRecordingHost()
		res := runCLI(t, h, "b\x00a\n", "run", "--stdin-file", "-", "--", "sort")
		require.Equal(t, 0, res.code, res.stderr)
		req, _ := h.LastRequest()
		assert.Equal(t, []byte("b\x00a\n"), req.Stdin)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.bin")
		require.NoError(t, os.WriteFile(path, []byte{0, 1, 2}, 0o600))
		h := testutil.NewRecordingHost()
		res := runCLI(t, h, "", "run", "--stdin-file", path, "--", "cat")
		require.Equal(t, 0, res.code, res.stderr)
		req, _ := h.LastRequest()
		assert.Equal(t, []byte{0, 1, 2}, req.Stdin)
	})

	t.Run("missing file", func(t *testing.T) {
		h := testutil.NewRecordingHost()
		res := runCLI(t, h, "", "run", "--stdin-file", "/nonexistent/input", "--", "cat")
		assert.Equal(t, exitUsage, res.code)
		assert.Empty(t, h.Calls())
	})
}

func TestRun_StatusIsExitCode(t *testing.T) {
	tests := []struct {
		name     string
		status   int32
		wantCode int
	}{
		{"success", 0, 0},
		{"failure", 3, 3},
		{"signal", 137, 137},
		{"host timeout", -1, exitTimeout},
		{"out of range", 300, 255},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := testutil.NewRecordingHost().SetResult(tc.status, []byte("out"), []byte("err"))

			res := runCLI(t, h, "", "run", "--", "prog")

			assert.Equal(t, tc.wantCode, res.code)
			assert.Equal(t, "out", res.stdout)
			assert.Equal(t, "err", res.stderr, "the child's status must not add a hostproc message")
		})
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"no program", []string{"run"}, "program: is required"},
		{"blank program", []string{"run", "--", " "}, "program: is required"},
		{"env without equals", []string{"run", "--env", "A", "--", "x"}, "KEY=VALUE"},
		{"env empty key", []string{"run", "--env", "=v", "--", "x"}, "empty key"},
		{"stdin conflict", []string{"run", "--stdin", "a", "--stdin-file", "-", "--", "x"}, "stdin-file"},
		{"unknown host", []string{"run", "--host", "remote", "--", "x"}, "host: must be one of"},
		{"unknown flag", []string{"run", "--bogus", "--", "x"}, "bogus"},
		{"bad timeout", []string{"run", "--timeout", "-5", "--", "x"}, "timeout"},
		{"bad log level", []string{"--log-level", "loud", "run", "--", "x"}, "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := testutil.NewRecordingHost()

			res := runCLI(t, h, "", tc.args...)

			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.stderr, "hostproc: ")
			assert.Contains(t, res.stderr, tc.wantMsg)
			assert.Empty(t, h.Calls(), "invalid input must not reach the host")
		})
	}
}

func TestRun_HostFailures(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		h := testutil.NewRecordingHost().SetUnavailable(true)
		res := runCLI(t, h, "", "run", "--", "x")
		assert.Equal(t, exitFailure, res.code)
		assert.Contains(t, res.stderr, string(goerrors.ErrCodeHostUnavailable))
		assert.Empty(t, h.Calls())
	})

	t.Run("boundary rejected", func(t *testing.T) {
		h := testutil.NewRecordingHost().FailAt(process.StepSetStdin, errors.New("refused"))
		res := runCLI(t, h, "", "run", "--stdin", "x", "--", "cat")
		assert.Equal(t, exitFailure, res.code)
		assert.Contains(t, res.stderr, process.StepSetStdin)
		assert.Empty(t, res.stdout)
	})

	t.Run("host not registered", func(t *testing.T) {
		h := testutil.NewRecordingHost()
		res := runCLI(t, h, "", "run", "--host", "local", "--", "x")
		assert.Equal(t, exitFailure, res.code)
		assert.Empty(t, h.Calls())
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostproc.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
process:
  timeout_ms: 1500
  env:
    - BASE=config
    - KEEP=yes
`)
	h := testutil.NewRecordingHost()

	res := runCLI(t, h, "", "--config", path, "run", "--env", "BASE=flag", "--", "env")

	require.Equal(t, 0, res.code, res.stderr)
	req, _ := h.LastRequest()
	assert.Equal(t, uint32(1500), req.Timeout)
	assert.Equal(t, [][2]string{{"BASE", "flag"}, {"KEEP", "yes"}}, req.Env)
}

func TestRun_TimeoutFlagOverridesConfig(t *testing.T) {
	path := writeConfig(t, "process:\n  timeout_ms: 1500\n")
	h := testutil.NewRecordingHost()

	res := runCLI(t, h, "", "--config", path, "run", "--timeout", "0", "--", "x")

	require.Equal(t, 0, res.code, res.stderr)
	req, _ := h.LastRequest()
	assert.Equal(t, uint32(0), req.Timeout)
}

func TestRun_FailOnStatusRetries(t *testing.T) {
	path := writeConfig(t, `
resilience:
  retry:
    max_attempts: 3
    initial_backoff: 1ms
    max_backoff: 2ms
`)
	h := testutil.NewRecordingHost().SetResult(2, []byte("attempt\n"), nil)

	res := runCLI(t, h, "", "--config", path, "run", "--fail-on-status", "--", "flaky")

	assert.Equal(t, 2, res.code)
	assert.Len(t, h.Requests(), 3)
	assert.Equal(t, "attempt\n", res.stdout, "only the last attempt is relayed")
	assert.NotContains(t, res.stderr, "hostproc: ")
}

func TestRun_RetrySucceeds(t *testing.T) {
	path := writeConfig(t, `
resilience:
  retry:
    max_attempts: 3
    initial_backoff: 1ms
process:
  fail_on_status: true
`)
	attempts := 0
	h := testutil.NewRecordingHost().Respond(func(testutil.Request) testutil.Result {
		attempts++
		if attempts < 2 {
			return testutil.Result{Status: 1}
		}
		return testutil.Result{Stdout: []byte("ok")}
	})

	res := runCLI(t, h, "", "--config", path, "run", "--", "flaky")

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "ok", res.stdout)
	assert.Equal(t, 2, attempts)
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "process:\n  host: remote\n")
	h := testutil.NewRecordingHost()

	res := runCLI(t, h, "", "--config", path, "run", "--", "x")

	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "process.host")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"status", &statusError{status: 7}, 7},
		{"negative status", &statusError{status: -1}, exitTimeout},
		{"usage", &usageError{err: errors.New("bad flag")}, exitUsage},
		{"invalid encoding", goerrors.InvalidEncoding("argument", "contains NUL"), exitUsage},
		{"host unavailable", goerrors.HostUnavailable("module"), exitFailure},
		{"plain", errors.New("boom"), exitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func TestHostPriority(t *testing.T) {
	assert.Equal(t, []string{hostModule, hostLocal}, hostPriority(hostAuto))
	assert.Equal(t, []string{hostModule, hostLocal}, hostPriority(""))
	assert.Equal(t, []string{hostLocal}, hostPriority(hostLocal))
}

func TestNamed_DoesNotAlias(t *testing.T) {
	base := make([]process.InvokerOption, 0, 4)
	base = append(base, process.WithName("base"))

	a := named("a", base)
	b := named("b", base)

	invA := process.NewInvoker(testutil.NewRecordingHost(), a...)
	invB := process.NewInvoker(testutil.NewRecordingHost(), b...)
	assert.Equal(t, "a", invA.Name())
	assert.Equal(t, "b", invB.Name())
}
