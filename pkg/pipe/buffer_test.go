package pipe

import (
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestNewBuffer_WriteAndRead(t *testing.T) {
	const max = 10
	buf, err := NewBuffer(max)
	if err != nil {
		t.Fatalf("NewBuffer error: %v", err)
	}

	// Write less than max bytes
	input := "hello"
	n, err := buf.W.Write([]byte(input))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != len(input) {
		t.Errorf("Write bytes = %d, want %d", n, len(input))
	}
	buf.CloseWriter()

	if got := string(buf.Bytes()); got != input {
		t.Errorf("Buffer content = %q, want %q", got, input)
	}
}

func TestNewBuffer_MaxBytes(t *testing.T) {
	const max = 5
	buf, err := NewBuffer(max)
	if err != nil {
		t.Fatalf("NewBuffer error: %v", err)
	}

	// Write more than max bytes
	input := "toolonginput"
	_, err = io.Copy(buf.W, strings.NewReader(input))
	if err != nil {
		t.Fatalf("Copy error: %v", err)
	}
	buf.CloseWriter()

	got := string(buf.Bytes())
	if got != input[:max+1] {
		t.Errorf("Buffer content = %q, want %q", got, input[:max+1])
	}
}

func TestBuffer_String(t *testing.T) {
	const max = 8
	buf, err := NewBuffer(max)
	if err != nil {
		t.Fatalf("NewBuffer error: %v", err)
	}

	_, _ = buf.W.Write([]byte("abc"))
	buf.CloseWriter()
	<-buf.Done

	want := "Buffer[3/8]"
	if buf.String() != want {
		t.Errorf("String() = %q, want %q", buf.String(), want)
	}
}

func TestBuffer_ChildOutput(t *testing.T) {
	buf, err := NewBuffer(1 << 10)
	if err != nil {
		t.Fatalf("NewBuffer error: %v", err)
	}

	cmd := exec.Command("echo", "hello")
	cmd.Stdout = buf.W
	if err := cmd.Start(); err != nil {
		buf.CloseWriter()
		t.Skipf("cannot start echo: %v", err)
	}
	buf.CloseWriter()
	cmd.Wait()

	select {
	case <-buf.Done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Done channel")
	}
	if got := string(buf.Bytes()); got != "hello\n" {
		t.Errorf("Buffer content = %q, want %q", got, "hello\n")
	}
}
