// Package chunk splits normalized page text into overlapping, sentence-aligned
// chunks for embedding.
//
// Sizes are measured in characters (Unicode code points). Overlap is carried
// over as whole words: floor(overlap/5) trailing words of the closed chunk,
// treating five characters as one average word. The approximation is
// intentional and kept for output compatibility.
package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// charsPerWord converts an overlap budget in characters into a word count.
const charsPerWord = 5

// Chunker splits text into sentence-aligned chunks of about ChunkSize characters.
type Chunker struct {
	ChunkSize int // target characters per chunk
	Overlap   int // overlap budget in characters
}

// New creates a Chunker with the given size and overlap.
func New(chunkSize, overlap int) *Chunker {
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}
}

// Chunk splits text using the chunker's settings.
func (c *Chunker) Chunk(text string) []core.Chunk {
	return Chunk(text, c.ChunkSize, c.Overlap)
}

// Chunk splits text into chunks of at most maxChunkChars characters where
// sentence boundaries allow. A sentence longer than maxChunkChars is emitted
// whole. Empty input yields an empty, non-nil slice.
func Chunk(text string, maxChunkChars, overlapChars int) []core.Chunk {
	chunks := []core.Chunk{}
	overlapWords := 0
	if overlapChars > 0 {
		overlapWords = overlapChars / charsPerWord
	}

	var buf strings.Builder
	bufLen := 0

	emit := func() string {
		closed := buf.String()
		trimmed := strings.TrimSpace(closed)
		if trimmed != "" {
			chunks = append(chunks, core.Chunk{
				Text:     trimmed,
				Index:    len(chunks),
				Metadata: core.ChunkMetadata{CharCount: utf8.RuneCountInString(trimmed)},
			})
		}
		return closed
	}

	for _, sentence := range SplitSentences(text) {
		sentenceLen := utf8.RuneCountInString(sentence)

		if bufLen > 0 && bufLen+1+sentenceLen > maxChunkChars {
			seed := tailWords(emit(), overlapWords)
			buf.Reset()
			bufLen = 0
			if seed != "" {
				buf.WriteString(seed)
				buf.WriteByte(' ')
				bufLen = utf8.RuneCountInString(seed) + 1
			}
			buf.WriteString(sentence)
			bufLen += sentenceLen
			continue
		}

		if bufLen > 0 {
			buf.WriteByte(' ')
			bufLen++
		}
		buf.WriteString(sentence)
		bufLen += sentenceLen
	}

	emit()
	return chunks
}

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace. The punctuation stays with its sentence; the whitespace run
// between sentences is dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))

	for i, r := range text {
		if i < start {
			continue
		}
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + utf8.RuneLen(r)
		next, size := utf8.DecodeRuneInString(text[end:])
		if size == 0 || !unicode.IsSpace(next) {
			continue
		}
		if end > start {
			sentences = append(sentences, text[start:end])
		}
		// Skip the separating whitespace run.
		start = end
		for start < len(text) {
			ws, n := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(ws) {
				break
			}
			start += n
		}
	}

	if start < len(text) {
		if rest := text[start:]; strings.TrimSpace(rest) != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

// tailWords returns the last n whitespace-delimited words of s joined by
// single spaces, or all of them when s has fewer than n.
func tailWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
