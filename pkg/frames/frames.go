// Package frames decodes the frame-data file format produced by the
// art2ascii converter.
//
// A frame-data file is UTF-8 text in which frames are separated by the
// literal token @FRAME@. The file starts and ends with the token, so the
// first and last elements of a split are framing artifacts, not frames.
package frames

import (
	"errors"
	"strings"
)

// Delimiter separates frames in a frame-data file.
const Delimiter = "@FRAME@"

// ErrEmpty is returned when content holds no renderable frame.
var ErrEmpty = errors.New("frames: no frames in content")

// Decode splits content into frames, dropping the leading and trailing
// split elements. Frame contents are returned as-is. Content whose frames
// are all empty yields ErrEmpty.
func Decode(content string) ([]string, error) {
	parts := strings.Split(content, Delimiter)
	if len(parts) <= 2 {
		return nil, ErrEmpty
	}
	frames := parts[1 : len(parts)-1]
	if allEmpty(frames) {
		return nil, ErrEmpty
	}
	return frames, nil
}

func allEmpty(frames []string) bool {
	for _, f := range frames {
		if f != "" {
			return false
		}
	}
	return true
}

// Encode joins frames into the frame-data wire format. Frames must not
// contain the delimiter.
func Encode(frames []string) string {
	var b strings.Builder
	b.WriteString(Delimiter)
	for _, f := range frames {
		b.WriteString(f)
		b.WriteString(Delimiter)
	}
	return b.String()
}
