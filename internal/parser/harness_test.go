package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunWithTimeoutDeliversResult(t *testing.T) {
	t.Parallel()

	want := Outcome{
		Tokens: []Token{StringToken("Email")},
		Flag:   FlagInterrupted,
		Status: "Interrupted",
	}
	got := runWithTimeout(func(context.Context) Outcome { return want }, time.Second, nil)

	// whatever flag the unit of work carries is returned verbatim
	if got.Flag != want.Flag || got.Status != want.Status || len(got.Tokens) != 1 {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRunWithTimeoutExpires(t *testing.T) {
	t.Parallel()

	const timeout = 50 * time.Millisecond
	started := time.Now()
	got := runWithTimeout(func(ctx context.Context) Outcome {
		<-ctx.Done() // cooperative worker: stops once cancelled
		return Outcome{Flag: FlagInterrupted, Status: "Interrupted"}
	}, timeout, nil)
	elapsed := time.Since(started)

	if got.Flag != FlagTimedOut {
		t.Fatalf("flag = %q, want %q", got.Flag, FlagTimedOut)
	}
	if len(got.Tokens) != 0 {
		t.Fatalf("timed-out outcome carries %d tokens, want none", len(got.Tokens))
	}
	if !strings.Contains(got.Status, timeout.String()) {
		t.Fatalf("status %q does not name the timeout", got.Status)
	}
	if elapsed > timeout+graceJoin+500*time.Millisecond {
		t.Fatalf("harness blocked for %s past its budget", elapsed)
	}
}

func TestRunWithTimeoutDetachesFromHungWorker(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	const timeout = 50 * time.Millisecond
	started := time.Now()
	got := runWithTimeout(func(context.Context) Outcome {
		<-release // ignores cancellation entirely
		return Outcome{Flag: FlagComplete, Status: "Complete"}
	}, timeout, nil)

	if got.Flag != FlagTimedOut {
		t.Fatalf("flag = %q, want %q", got.Flag, FlagTimedOut)
	}
	if elapsed := time.Since(started); elapsed > timeout+graceJoin+500*time.Millisecond {
		t.Fatalf("harness waited %s on a hung worker", elapsed)
	}
}

func TestRunWithTimeoutRecoversPanic(t *testing.T) {
	t.Parallel()

	got := runWithTimeout(func(context.Context) Outcome {
		panic("corrupt buffer")
	}, time.Second, nil)

	if got.Flag != FlagErrored {
		t.Fatalf("flag = %q, want %q", got.Flag, FlagErrored)
	}
	if len(got.Tokens) != 1 || got.Tokens[0].Kind != KindError {
		t.Fatalf("errored outcome should carry one Error token, got %v", got.Tokens)
	}
	if !strings.Contains(got.Tokens[0].Value, "corrupt buffer") {
		t.Fatalf("error token %q does not describe the failure", got.Tokens[0].Value)
	}
}

func TestParseFileWithTimeoutEndToEnd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vault.sol")
	if err := os.WriteFile(path, []byte("Email\x06a@b.com\x00"), 0o600); err != nil {
		t.Fatal(err)
	}

	out := ParseFileWithTimeout(path, Options{})
	if out.Flag != FlagComplete {
		t.Fatalf("flag = %q, want %q", out.Flag, FlagComplete)
	}
	if out.TokenBytes() != len("Email\x06a@b.com\x00") {
		t.Fatalf("tokens cover %d bytes", out.TokenBytes())
	}
}

func TestParseFileWithTimeoutMissingFile(t *testing.T) {
	t.Parallel()

	out := ParseFileWithTimeout(filepath.Join(t.TempDir(), "gone.sol"), Options{Timeout: time.Second})
	if out.Flag != FlagErrored {
		t.Fatalf("flag = %q, want %q", out.Flag, FlagErrored)
	}
}
