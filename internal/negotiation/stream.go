package negotiation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const maxFrameSize = 1 << 20

var dataPrefix = []byte("data:")

// ReadStream consumes a respond-stream body. Every stream frame's content is
// handed to onChunk (which may be nil) and accumulated. Reading stops at the
// first complete frame, so a turn yields at most one Completion.
func ReadStream(r io.Reader, onChunk func(string)) (*Completion, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	var buf strings.Builder
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if len(payload) == 0 {
			continue
		}

		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			return nil, fmt.Errorf("negotiation: parse frame: %w", err)
		}

		switch frame.Type {
		case FrameStream:
			buf.WriteString(frame.Content)
			if onChunk != nil && frame.Content != "" {
				onChunk(frame.Content)
			}
		case FrameComplete:
			return completionFrom(&frame, buf.String()), nil
		case FrameError:
			msg := frame.Message
			if msg == "" {
				msg = frame.Error
			}
			return nil, &StreamError{Message: msg}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("negotiation: read stream: %w", err)
	}
	return nil, ErrStreamIncomplete
}

func completionFrom(frame *Frame, streamed string) *Completion {
	c := &Completion{
		Message:     streamed,
		State:       frame.State,
		IsComplete:  frame.IsComplete,
		AgreedPrice: frame.AgreedPrice,
	}
	if c.Message == "" {
		c.Message = frame.Content
	}
	// Completion may be reported only inside the state object.
	if frame.State != nil {
		if !c.IsComplete {
			c.IsComplete = frame.State.IsComplete
		}
		if !c.AgreedPrice.Valid {
			c.AgreedPrice = frame.State.AgreedPrice
		}
	}
	return c
}
