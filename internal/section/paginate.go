package section

import (
	"strings"

	"github.com/hpungsan/infoboard/internal/errors"
)

// MessageLimit is the maximum length of a single outbound chat message.
const MessageLimit = 2000

// hardSplitMargin is subtracted from maxLen when slicing oversized blocks,
// leaving room for decoration the transport layer may add.
const hardSplitMargin = 10

// Pack fits an ordered sequence of text blocks into message-sized chunks.
//
// In greedy mode (hardSplit=false) consecutive blocks are joined with
// newlines until adding the next block would meet or exceed maxLen, at
// which point the current chunk is emitted and a fresh one started. A
// single block that alone meets maxLen is a caller contract violation
// and fails with an OVERSIZED_BLOCK error.
//
// In hard-split mode (hardSplit=true) each block is sliced into
// consecutive fixed-size rune windows and every slice becomes its own
// chunk. This mode never fails; it exists for untrusted externally
// fetched text whose line lengths cannot be validated up front.
//
// Pack is a pure function and safe for concurrent use.
func Pack(blocks []string, maxLen int, hardSplit bool) ([]string, error) {
	if hardSplit {
		return packHard(blocks, maxLen), nil
	}
	return packGreedy(blocks, maxLen)
}

func packGreedy(blocks []string, maxLen int) ([]string, error) {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, block := range blocks {
		blockLen := CountChars(block)

		// +1 accounts for the joining newline
		if currentLen+blockLen+1 >= maxLen {
			if currentLen == 0 {
				return nil, errors.NewOversizedBlock(maxLen, blockLen)
			}
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}

		if currentLen > 0 {
			current.WriteByte('\n')
			currentLen++
		}
		current.WriteString(block)
		currentLen += blockLen
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks, nil
}

func packHard(blocks []string, maxLen int) []string {
	window := maxLen - hardSplitMargin
	if window < 1 {
		window = 1
	}

	var chunks []string
	for _, block := range blocks {
		runes := []rune(block)
		if len(runes) == 0 {
			continue
		}
		for start := 0; start < len(runes); start += window {
			end := start + window
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[start:end]))
		}
	}
	return chunks
}
