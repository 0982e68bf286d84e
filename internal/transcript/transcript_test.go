package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ayusman/signscribe/internal/sign"
)

func TestTranscript_RoundTrip(t *testing.T) {
	tr := New(DefaultHistoryCapacity)

	tr.AppendSign(sign.A)
	tr.AppendSign(sign.B)
	tr.AppendSpace()
	tr.AppendSign(sign.C)

	if got := tr.Text(); got != "AB C" {
		t.Fatalf("Text() = %q, want %q", got, "AB C")
	}
	if got := tr.WordCount(); got != 2 {
		t.Errorf("WordCount() = %d, want 2", got)
	}
	if got := tr.SignCount(); got != 3 {
		t.Errorf("SignCount() = %d, want 3", got)
	}

	tr.Backspace()
	if got := tr.Text(); got != "AB " {
		t.Errorf("after Backspace Text() = %q, want %q", got, "AB ")
	}
	if got := tr.SignCount(); got != 3 {
		t.Errorf("Backspace should not change SignCount, got %d", got)
	}
	if got := len(tr.History()); got != 3 {
		t.Errorf("Backspace should not change history, got %d entries", got)
	}

	tr.Clear()
	if tr.Text() != "" {
		t.Errorf("after Clear Text() = %q, want empty", tr.Text())
	}
	if tr.SignCount() != 0 {
		t.Errorf("after Clear SignCount() = %d, want 0", tr.SignCount())
	}
	if tr.WordCount() != 0 {
		t.Errorf("after Clear WordCount() = %d, want 0", tr.WordCount())
	}
	if len(tr.History()) != 0 {
		t.Errorf("after Clear History() = %v, want empty", tr.History())
	}
}

func TestTranscript_HistoryEviction(t *testing.T) {
	tr := New(10)
	signs := []sign.Sign{sign.A, sign.B, sign.C, sign.D, sign.E, sign.F, sign.I, sign.K, sign.L, sign.O, sign.U}

	for _, s := range signs {
		tr.AppendSign(s)
	}

	got := tr.History()
	want := signs[1:]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %v, want %v", got, want)
	}
	if tr.SignCount() != 11 {
		t.Errorf("SignCount() = %d, want 11", tr.SignCount())
	}
	if tr.Text() != "ABCDEFIKLOU" {
		t.Errorf("Text() = %q, eviction must not touch the buffer", tr.Text())
	}
}

func TestTranscript_AppendSpace(t *testing.T) {
	tr := New(0)
	tr.AppendSign(sign.Hello)
	tr.AppendSpace()

	if tr.Text() != "HELLO " {
		t.Errorf("Text() = %q, want %q", tr.Text(), "HELLO ")
	}
	if tr.SignCount() != 1 || len(tr.History()) != 1 {
		t.Error("AppendSpace should not change the sign counter or history")
	}
	if tr.Capacity() != DefaultHistoryCapacity {
		t.Errorf("Capacity() = %d, want %d", tr.Capacity(), DefaultHistoryCapacity)
	}
}

func TestTranscript_Backspace(t *testing.T) {
	t.Run("no-op on empty buffer", func(t *testing.T) {
		tr := New(0)
		tr.Backspace()
		if tr.Text() != "" {
			t.Errorf("Text() = %q, want empty", tr.Text())
		}
	})

	t.Run("removes a word boundary", func(t *testing.T) {
		tr := New(0)
		tr.AppendSign(sign.Good)
		tr.AppendSpace()
		tr.AppendSign(sign.Y)
		if tr.WordCount() != 2 {
			t.Fatalf("WordCount() = %d, want 2", tr.WordCount())
		}
		tr.Backspace()
		if tr.WordCount() != 1 {
			t.Errorf("WordCount() = %d, want 1 after removing the last letter", tr.WordCount())
		}
	})
}

func TestTranscript_AppendNone(t *testing.T) {
	tr := New(0)
	tr.AppendSign(sign.None)
	if tr.SignCount() != 0 || tr.Text() != "" {
		t.Error("appending None should be ignored")
	}
}

func TestTranscript_HistoryLine(t *testing.T) {
	tr := New(0)
	if got := tr.HistoryLine(); got != "No signs yet" {
		t.Errorf("HistoryLine() = %q", got)
	}
	tr.AppendSign(sign.Hello)
	tr.AppendSign(sign.A)
	if got := tr.HistoryLine(); got != "HELLO → A" {
		t.Errorf("HistoryLine() = %q, want %q", got, "HELLO → A")
	}
}

func TestTranscript_Snapshot(t *testing.T) {
	tr := New(0)
	tr.AppendSign(sign.W)

	snap := tr.Snapshot()
	tr.AppendSign(sign.V)

	if snap.Text != "W" || snap.SignCount != 1 || len(snap.History) != 1 {
		t.Errorf("snapshot changed after later appends: %+v", snap)
	}
}

func TestSave(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("writes the timestamped file", func(t *testing.T) {
		dir := t.TempDir()

		path, err := Save(dir, "HELLO AB", now)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if filepath.Base(path) != "sign_translation_20260304_050607.txt" {
			t.Errorf("unexpected file name %q", filepath.Base(path))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read saved file: %v", err)
		}
		if string(data) != "HELLO AB" {
			t.Errorf("saved %q, want %q", data, "HELLO AB")
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected only the saved file, found %d entries", len(entries))
		}
	})

	t.Run("refuses empty text", func(t *testing.T) {
		_, err := Save(t.TempDir(), "   ", now)
		if !errors.Is(err, ErrNoText) {
			t.Errorf("expected ErrNoText, got %v", err)
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		if _, err := Save(dir, "A", now); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	})
}
