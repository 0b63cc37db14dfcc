package llmclient

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/elee1766/naochat/src/aisdk"
)

const (
	sseDataPrefix = "data:"
	sseDoneMarker = "[DONE]"
)

// sseStream reads chat completion chunks from a server-sent event body.
type sseStream struct {
	body   io.ReadCloser
	reader *bufio.Reader

	mu     sync.Mutex
	closed bool
	done   bool
}

var _ aisdk.StreamInterface = (*sseStream)(nil)

func newSSEStream(body io.ReadCloser) *sseStream {
	return &sseStream{body: body, reader: bufio.NewReaderSize(body, 64*1024)}
}

// Read returns the next chunk, io.EOF after [DONE] or the end of the body,
// or an *APIError when the provider reports an error mid-stream.
func (s *sseStream) Read() (*aisdk.StreamChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.done {
		return nil, io.EOF
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				s.done = true
			}
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		data, ok := strings.CutPrefix(line, sseDataPrefix)
		if !ok {
			// blank separators, comments, event: and id: lines
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		if data == sseDoneMarker {
			s.done = true
			return nil, io.EOF
		}

		if strings.HasPrefix(data, `{"error"`) || strings.HasPrefix(data, `{"type":"error"`) {
			var errResp ErrorResponse
			if json.Unmarshal([]byte(data), &errResp) == nil && errResp.Error.Message != "" {
				s.done = true
				return nil, errResp.apiError(0)
			}
		}

		var chunk aisdk.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stream chunk: %w", err)
		}
		return &chunk, nil
	}
}

// Close closes the stream.
func (s *sseStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
