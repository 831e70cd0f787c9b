package identity

import (
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	type test struct {
		exe    string
		role   rdpwatch.ProcessRole
		remote bool
	}

	var tests = []test{
		{`C:\Windows\System32\rdpclip.exe`, rdpwatch.RoleClipboardRelay, false},
		{`C:\Windows\System32\RDPCLIP.EXE`, rdpwatch.RoleClipboardRelay, false},
		{`C:\Windows\system32\svchost.exe`, rdpwatch.RolePrivilegedServiceHost, false},
		{`C:\Windows\System32\mstsc.exe`, rdpwatch.RoleRemoteClient, true},
		{`C:/Program Files/Remote Desktop/msrdcw.exe`, rdpwatch.RoleRemoteClient, true},
		{"/usr/bin/vmconnect.exe", rdpwatch.RoleRemoteClient, true},
		{"notepad.exe", rdpwatch.RoleRemoteClient, false},
		{"", rdpwatch.RoleRemoteClient, false},
	}

	for _, test := range tests {
		t.Run(test.exe, func(t *testing.T) {
			assert.Equal(t, test.role, Classify(test.exe))
			assert.Equal(t, test.remote, IsRemoteClient(test.exe))
		})
	}
}

func TestDetectSelf(t *testing.T) {
	role, exe, err := DetectSelf()
	require.NoError(t, err)

	// The test binary is neither of the known hosts.
	assert.NotEmpty(t, exe)
	assert.Equal(t, rdpwatch.RoleRemoteClient, role)
}

func TestDetectMissing(t *testing.T) {
	role, _, err := Detect(-1)
	assert.Error(t, err)
	assert.Equal(t, DefaultRole, role)
}

func TestHostTerminator(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no sleep command on windows")
	}

	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not found:", err)
	}

	cmd := exec.Command(sleep, "60")
	require.NoError(t, cmd.Start())

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	defer func(exit func(int)) { exitProcess = exit }(exitProcess)

	code := -1
	exitProcess = func(c int) { code = c }

	term := HostTerminator{HostPID: cmd.Process.Pid}
	assert.Equal(t, cmd.Process.Pid, term.PID())
	require.NoError(t, term.Terminate())

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		cmd.Process.Signal(os.Kill)
		t.Fatal("host process still alive after Terminate")
	}

	assert.Equal(t, 0, code)
}

func TestHostTerminatorMissing(t *testing.T) {
	defer func(exit func(int)) { exitProcess = exit }(exitProcess)

	exited := false
	exitProcess = func(int) { exited = true }

	err := HostTerminator{HostPID: -1}.Terminate()
	assert.Error(t, err)
	assert.False(t, exited, "exited although the host was not killed")
}
