package systemd

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// listenNotify points NOTIFY_SOCKET at a datagram socket the test can read.
func listenNotify(t *testing.T) *net.UnixConn {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Skipf("unixgram sockets unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	t.Setenv("NOTIFY_SOCKET", path)
	return conn
}

func readMessage(t *testing.T, conn *net.UnixConn) string {
	t.Helper()
	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("no notify message: %v", err)
	}
	return string(buf[:n])
}

func TestNotifier_ReadyAndStopping(t *testing.T) {
	conn := listenNotify(t)
	n := NewNotifier(quietLogger())

	n.Ready()
	if got := readMessage(t, conn); got != "READY=1" {
		t.Errorf("message = %q, want READY=1", got)
	}
	n.Stopping()
	if got := readMessage(t, conn); got != "STOPPING=1" {
		t.Errorf("message = %q, want STOPPING=1", got)
	}
}

func TestNotifier_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	n := NewNotifier(quietLogger())
	if n.send("READY=1") {
		t.Error("send() reported delivery without a socket")
	}
}

func TestWatchdog_Disabled(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	n := NewNotifier(quietLogger())

	done := make(chan error, 1)
	go func() { done <- n.Watchdog(context.Background(), func() bool { return true }) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watchdog() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watchdog() should return at once when disabled")
	}
}

func TestWatchdog_PingsWhileHealthy(t *testing.T) {
	conn := listenNotify(t)
	t.Setenv("WATCHDOG_USEC", "40000")
	t.Setenv("WATCHDOG_PID", strconv.Itoa(os.Getpid()))

	var healthy atomic.Bool
	healthy.Store(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(quietLogger())
	go n.Watchdog(ctx, healthy.Load)

	if got := readMessage(t, conn); got != "WATCHDOG=1" {
		t.Errorf("message = %q, want WATCHDOG=1", got)
	}
}

func TestProgress(t *testing.T) {
	var counter uint64
	check := Progress(func() uint64 { return counter })

	if check() {
		t.Error("check() = true before the counter moved")
	}
	counter = 5
	if !check() {
		t.Error("check() = false after the counter moved")
	}
	if check() {
		t.Error("check() = true with the counter unchanged")
	}
}
