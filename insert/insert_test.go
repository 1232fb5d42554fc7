package insert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"murmur/clipboard"
	"murmur/paste"
)

// fastOptions keeps the protocol's bounded waits short enough for tests.
func fastOptions() Options {
	return Options{
		MaxAttempts:  3,
		CommitWindow: 20 * time.Millisecond,
		PollInterval: time.Millisecond,
		RetryDelay:   time.Millisecond,
		SettleDelay:  5 * time.Millisecond,
	}
}

func boardText(t *testing.T, b *clipboard.Fake) string {
	t.Helper()
	text, err := b.ReadText()
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func TestInsertRestoresOriginal(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Inserted {
		t.Fatalf("Insert = %v, want Inserted", got)
	}
	if sender.Sends() != 1 {
		t.Errorf("Sends = %d, want 1", sender.Sends())
	}
	if got := boardText(t, board); got != "ORIGINAL" {
		t.Errorf("clipboard = %q, want restored ORIGINAL", got)
	}
}

func TestInsertPreservesRichContent(t *testing.T) {
	board := clipboard.NewFake()
	board.SetItems([]clipboard.Item{
		{Format: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
		{Format: clipboard.FormatText, Data: []byte("caption")},
	})
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Inserted {
		t.Fatalf("Insert = %v, want Inserted", got)
	}

	items := board.Items()
	if len(items) != 2 || items[0].Format != "image/png" {
		t.Errorf("rich clipboard content not restored: %+v", items)
	}
}

func TestInsertCapabilityMissing(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	sender := paste.NewFakeSender()
	sender.SetAvailable(false)
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != CopiedToClipboard {
		t.Fatalf("Insert = %v, want CopiedToClipboard", got)
	}
	if sender.Sends() != 0 {
		t.Error("paste keystroke sent despite missing capability")
	}
	// Clipboard-only fallback intentionally leaves the text for the user.
	if got := boardText(t, board); got != "NEW" {
		t.Errorf("clipboard = %q, want NEW", got)
	}
}

func TestInsertRetriesDroppedWrites(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	board.DropWrites = 2
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Inserted {
		t.Fatalf("Insert = %v, want Inserted after retries", got)
	}
	if calls := board.WriteCalls(); calls != 3 {
		t.Errorf("WriteCalls = %d, want 3", calls)
	}
	if got := boardText(t, board); got != "ORIGINAL" {
		t.Errorf("clipboard = %q, want restored ORIGINAL", got)
	}
}

func TestInsertFailsAfterExhaustedRetries(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	board.DropWrites = 100 // never commits
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Failed {
		t.Fatalf("Insert = %v, want Failed", got)
	}
	if sender.Sends() != 0 {
		t.Error("paste keystroke sent despite failed verification")
	}
	if got := boardText(t, board); got != "ORIGINAL" {
		t.Errorf("clipboard = %q, want restored ORIGINAL", got)
	}
}

func TestInsertWriteErrorRestores(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	board.WriteErr = errors.New("clipboard busy")
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Failed {
		t.Fatalf("Insert = %v, want Failed", got)
	}
	if got := boardText(t, board); got != "ORIGINAL" {
		t.Errorf("clipboard = %q, want ORIGINAL", got)
	}
}

func TestInsertKeystrokeErrorRestores(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	sender := paste.NewFakeSender()
	sender.SetSendErr(errors.New("device gone"))
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Failed {
		t.Fatalf("Insert = %v, want Failed", got)
	}
	if got := boardText(t, board); got != "ORIGINAL" {
		t.Errorf("clipboard = %q, want ORIGINAL", got)
	}
}

func TestInsertLeavesThirdPartyOverwrite(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	sender := paste.NewFakeSender()
	// A third party grabs the clipboard during the paste window.
	sender.OnSend(func() { board.SetText("THEIRS") })
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Inserted {
		t.Fatalf("Insert = %v, want Inserted", got)
	}
	if got := boardText(t, board); got != "THEIRS" {
		t.Errorf("clipboard = %q, want third-party THEIRS left alone", got)
	}
}

func TestInsertSnapshotErrorTouchesNothing(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	board.ReadErr = errors.New("unreadable")
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Failed {
		t.Fatalf("Insert = %v, want Failed", got)
	}
	if calls := board.WriteCalls(); calls != 0 {
		t.Errorf("WriteCalls = %d, want 0 when snapshot fails", calls)
	}
}

func TestInsertConcurrentCallRejected(t *testing.T) {
	board := clipboard.NewFake()
	board.SetText("ORIGINAL")
	sender := paste.NewFakeSender()

	inFlight := make(chan struct{})
	release := make(chan struct{})
	sender.OnSend(func() {
		close(inFlight)
		<-release
	})

	in := NewWithOptions(board, sender, fastOptions())

	var wg sync.WaitGroup
	var first Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = in.Insert("NEW")
	}()

	<-inFlight
	second := in.Insert("OTHER")
	writesBefore := board.WriteCalls()
	close(release)
	wg.Wait()

	if first != Inserted {
		t.Errorf("first Insert = %v, want Inserted", first)
	}
	if second != Failed {
		t.Errorf("second Insert = %v, want Failed", second)
	}
	if board.WriteCalls() != writesBefore {
		t.Error("rejected call wrote to the clipboard")
	}
}

func TestInsertAlreadyEqualText(t *testing.T) {
	// Clipboard already holds the text being inserted: the change count
	// never moves, but content verification still passes.
	board := clipboard.NewFake()
	board.SetText("NEW")
	sender := paste.NewFakeSender()
	in := NewWithOptions(board, sender, fastOptions())

	if got := in.Insert("NEW"); got != Inserted {
		t.Fatalf("Insert = %v, want Inserted", got)
	}
}

func TestResultString(t *testing.T) {
	for _, tt := range []struct {
		r    Result
		want string
	}{
		{Inserted, "inserted"},
		{CopiedToClipboard, "copiedToClipboard"},
		{Failed, "failed"},
	} {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}
