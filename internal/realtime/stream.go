package realtime

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/tidwall/gjson"
)

// ErrStreamClosed is returned when the server ends the stream.
var ErrStreamClosed = errors.New("event stream closed")

const defaultEventName = "message"

// Stream decodes a text/event-stream body into named events.
type Stream struct {
	r *bufio.Reader
}

func NewStream(r io.Reader) *Stream {
	return &Stream{r: bufio.NewReader(r)}
}

// Next blocks until a complete event arrives. An event without an event
// field takes its name from a "type" member of its data, else "message".
// A partial event cut off by EOF is discarded.
func (s *Stream) Next() (model.StreamEvent, error) {
	var (
		name    string
		data    bytes.Buffer
		hasData bool
	)
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return model.StreamEvent{}, ErrStreamClosed
			}
			return model.StreamEvent{}, err
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if line == "" {
			if !hasData && name == "" {
				continue
			}
			ev := model.StreamEvent{Type: name, Data: append([]byte(nil), data.Bytes()...)}
			if ev.Type == "" {
				ev.Type = gjson.GetBytes(ev.Data, "type").String()
			}
			if ev.Type == "" {
				ev.Type = defaultEventName
			}
			return ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		}
	}
}
