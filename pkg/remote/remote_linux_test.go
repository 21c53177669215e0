package remote

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
)

// Helper function: creates a child process and returns its PID
func createTestProcess(t *testing.T) (int, func()) {
	cmd := exec.Command("sleep", "10") // use sleep command to create a running process
	if err := cmd.Start(); err != nil {
		t.Skipf("Failed to start test process: %v", err)
	}

	cleanup := func() {
		cmd.Process.Kill()
		cmd.Wait()
	}

	return cmd.Process.Pid, cleanup
}

// firstMapping returns the start address of the mapping backing offset 0
// of the process executable
func firstMapping(t *testing.T, pid int) uintptr {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		t.Fatalf("Failed to read process maps: %v", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		// start-end perms offset dev inode path
		if len(fields) < 6 || fields[2] != "00000000" || !strings.HasPrefix(fields[1], "r") {
			continue
		}
		var start uint64
		fmt.Sscanf(fields[0], "%x-", &start)
		return uintptr(start)
	}
	t.Fatal("Failed to find readable memory region")
	return 0
}

func TestVMReaderSelf(t *testing.T) {
	data := []byte("Hello, world!\n")
	got, err := VMReader{}.Read(os.Getpid(), Buffer{
		Addr: uintptr(unsafe.Pointer(&data[0])),
		Len:  len(data),
	})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestVMReaderEmpty(t *testing.T) {
	// a zero length read never reaches the kernel, so the address is not checked
	got, err := VMReader{}.Read(os.Getpid(), Buffer{Addr: 0, Len: 0})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read() len = %d, want 0", len(got))
	}
}

func TestVMReaderChild(t *testing.T) {
	pid, cleanup := createTestProcess(t)
	defer cleanup()

	addr := firstMapping(t, pid)
	got, err := VMReader{}.Read(pid, Buffer{Addr: addr, Len: 4})
	if errors.Is(err, syscall.EPERM) {
		t.Skipf("process_vm_readv not permitted: %v", err)
	}
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if want := []byte("\x7fELF"); !bytes.Equal(got, want) {
		t.Errorf("Read() = %q, want %q", got, want)
	}
}

func TestVMReaderFailures(t *testing.T) {
	tests := []struct {
		name string
		pid  int
		addr uintptr
		want error
	}{
		{"unmapped address", os.Getpid(), 8, syscall.EFAULT},
		{"no such process", 1 << 30, 0x1000, syscall.ESRCH},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VMReader{}.Read(tt.pid, Buffer{Addr: tt.addr, Len: 16})
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("Read() = %q, want nil", got)
			}
		})
	}
}

func TestPeekReaderUntraced(t *testing.T) {
	pid, cleanup := createTestProcess(t)
	defer cleanup()

	// PTRACE_PEEKDATA is refused for tasks not traced by the caller
	_, err := PeekReader{}.Read(pid, Buffer{Addr: firstMapping(t, pid), Len: 4})
	if err == nil {
		t.Fatal("Read() error = nil, want ESRCH")
	}
}
