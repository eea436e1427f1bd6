package drill

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/drill/internal/align"
)

// sentenceSpace namespaces dictation keys.
var sentenceSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/verte-zerg/drill/dictation"))

// DictationItem is a sentence the learner reads or writes back.
type DictationItem struct {
	Words []string

	key    Key
	stream string
	time   TimePolicy
}

// DictationOption customizes a DictationItem.
type DictationOption func(*DictationItem)

// WithDictationTime overrides the time policy.
func WithDictationTime(p TimePolicy) DictationOption {
	return func(it *DictationItem) {
		it.time = p
	}
}

// NewDictation builds an item from a sentence. Sentences without any letters
// are rejected.
func NewDictation(sentence string, opts ...DictationOption) (*DictationItem, error) {
	words := strings.Fields(sentence)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty sentence", ErrConfiguration)
	}
	stream := align.Stream(words)
	if stream == "" {
		return nil, fmt.Errorf("%w: sentence %q has no words to read", ErrConfiguration, sentence)
	}
	it := &DictationItem{
		Words:  words,
		key:    SentenceKey(stream),
		stream: stream,
		time:   DefaultDictationTime,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// SentenceKey derives the key of a normalized letter stream.
func SentenceKey(stream string) Key {
	return Key("dict:" + uuid.NewSHA1(sentenceSpace, []byte(stream)).String())
}

// Sentence returns the reference sentence.
func (it *DictationItem) Sentence() string {
	return strings.Join(it.Words, " ")
}

// Stream returns the normalized letter stream of the sentence.
func (it *DictationItem) Stream() string {
	return it.stream
}

// Key implements Item.
func (it *DictationItem) Key() Key { return it.key }

// Kind implements Item.
func (it *DictationItem) Kind() Kind { return KindDictation }

// Difficulty implements Item. It is the length of the normalized sentence.
func (it *DictationItem) Difficulty() float64 {
	return float64(utf8.RuneCountInString(it.stream))
}

// TimeLimit implements Item.
func (it *DictationItem) TimeLimit() time.Duration { return it.time.Limit(it.Difficulty()) }

// Prompt implements Item.
func (it *DictationItem) Prompt() string { return it.Sentence() }

func (it *DictationItem) sealed() {}
