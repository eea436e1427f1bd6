// Package sentences loads dictation sentences from files.
package sentences

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/drill/internal/drill"
)

// ErrEmpty is returned when a source holds no usable sentence.
var ErrEmpty = errors.New("sentence list is empty")

// Load reads one sentence per line from the provided file path.
func Load(path string, opts ...drill.DictationOption) ([]*drill.DictationItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only sentence list.
			_ = cerr
		}
	}()
	items, err := Read(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Read parses sentences from r. Blank lines, lines starting with '#' and
// lines without any word are skipped, as are repeats of a sentence already
// read.
func Read(r io.Reader, opts ...drill.DictationOption) ([]*drill.DictationItem, error) {
	var items []*drill.DictationItem
	seen := map[drill.Key]bool{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		it, err := drill.NewDictation(line, opts...)
		if errors.Is(err, drill.ErrConfiguration) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if seen[it.Key()] {
			continue
		}
		seen[it.Key()] = true
		items = append(items, it)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	return items, nil
}
