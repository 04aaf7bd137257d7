package tuitest

import (
	"bytes"
	"context"
	"testing"
)

func TestParseFramesSplitsOnErase(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[HFirst frame   \r\n\x1b[2J\x1b[H\x1b[1mSecond\x1b[0m frame\r\n\r\n")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d: %#v", len(frames), frames)
	}
	if frames[0].Plain != "First frame" {
		t.Fatalf("unexpected first frame %q", frames[0].Plain)
	}
	if frames[1].Plain != "Second frame" || frames[1].Index != 1 {
		t.Fatalf("unexpected second frame %+v", frames[1])
	}

	rec := &Recording{Frames: frames}
	if !rec.Contains("Second") {
		t.Fatal("expected Contains to find the second frame")
	}
	if rec.Contains("Third") {
		t.Fatal("Contains matched text that was never drawn")
	}
	if last, ok := rec.FinalFrame(); !ok || last.Index != 1 {
		t.Fatalf("unexpected final frame %+v", last)
	}
}

func TestParseFramesWithoutErase(t *testing.T) {
	frames := parseFrames([]byte("\x1b]11;?\x07plain \x1b[32mgreen\x1b[0m\r\n"))
	if len(frames) != 1 || frames[0].Plain != "plain green" {
		t.Fatalf("unexpected frames %#v", frames)
	}
}

func TestNilRecording(t *testing.T) {
	var rec *Recording
	if rec.Contains("x") {
		t.Fatal("nil recording contains nothing")
	}
	if _, ok := rec.FinalFrame(); ok {
		t.Fatal("nil recording has no final frame")
	}
}

func TestScreenWaitsForText(t *testing.T) {
	var sent bytes.Buffer
	s := &screen{out: []byte("\x1b[1mSee\x1b[0m What"), input: &sent}
	if !s.shows("See What") {
		t.Fatal("shows should ignore escape sequences")
	}
	if err := s.play(context.Background(), Step{WaitFor: "See What", Input: KeyTab}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if sent.String() != "\t" {
		t.Fatalf("unexpected input %q", sent.String())
	}
}

func TestResponderAnswersQueriesInOrder(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)
	tr.Process([]byte("hello\x1b]11;?\x07 and \x1b[6"))
	tr.Process([]byte("n done"))

	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("got %q want %q", out.String(), want)
	}
	if tr.answers != 2 {
		t.Fatalf("expected 2 answers, got %d", tr.answers)
	}
}
