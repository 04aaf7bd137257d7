package tuitest

import (
	"bytes"
	"io"
)

// terminalReply pairs a query a program may write with the answer a real
// terminal would send back. Programs that probe the terminal block until
// they hear back, so the harness answers on the PTY's behalf.
type terminalReply struct {
	query  []byte
	answer []byte
}

var terminalReplies = []terminalReply{
	{query: []byte("\x1b[6n"), answer: []byte("\x1b[1;1R")},
	{query: []byte("\x1b]10;?\x07"), answer: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{query: []byte("\x1b]10;?\x1b\\"), answer: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{query: []byte("\x1b]11;?\x07"), answer: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{query: []byte("\x1b]11;?\x1b\\"), answer: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderTail      = 64
)

type terminalResponder struct {
	w       io.Writer
	buf     []byte
	answers int
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

// Process scans a chunk of program output and answers any queries in it.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	// Keep a tail so queries split across reads are still seen.
	if len(tr.buf) > responderMaxBuffer {
		tr.buf = tr.buf[len(tr.buf)-responderTail:]
	}
}

func (tr *terminalResponder) answerNext() bool {
	first, firstIdx := -1, -1
	for i, reply := range terminalReplies {
		idx := bytes.Index(tr.buf, reply.query)
		if idx < 0 {
			continue
		}
		if firstIdx < 0 || idx < firstIdx {
			first, firstIdx = i, idx
		}
	}
	if first < 0 {
		return false
	}
	reply := terminalReplies[first]
	tr.buf = tr.buf[firstIdx+len(reply.query):]
	_, _ = tr.w.Write(reply.answer)
	tr.answers++
	return true
}
