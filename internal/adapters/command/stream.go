package command

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"golang.org/x/text/transform"
)

const maxLineSize = 1 << 20

// drain decodes r line by line and hands every line to emit. It keeps
// reading after a scan error so the child never blocks on a full pipe.
func (r *StreamRunner) drain(src io.Reader, emit func(string)) error {
	decoded := transform.NewReader(src, r.encoding.NewDecoder())

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(splitLines)

	for scanner.Scan() {
		emit(strings.ToValidUTF8(scanner.Text(), "\uFFFD"))
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, src)
		return err
	}
	return nil
}

// splitLines is a bufio.SplitFunc that ends a line at "\n", "\r\n" or a lone
// "\r", so carriage-return progress updates arrive as separate lines.
func splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// isProgressLine reports whether a stderr line looks like a progress bar
// update: an iteration rate together with a percentage or iteration count.
func isProgressLine(line string) bool {
	rate := strings.Contains(line, "it/s]") || strings.Contains(line, "s/it]")
	if !rate {
		return false
	}
	return strings.Contains(line, "%|") || strings.Contains(line, "it [")
}
