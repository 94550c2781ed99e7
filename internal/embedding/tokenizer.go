package embedding

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	"github.com/sugarme/tokenizer/processor"
)

// Tokenizer file names looked up next to the model when no tokenizer path is configured.
const (
	TokenizerJSONFile = "tokenizer.json"
	VocabFile         = "vocab.txt"
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// WordPieceTokenizer encodes text with the model's own WordPiece vocabulary.
type WordPieceTokenizer struct {
	tk    *tokenizer.Tokenizer
	sepID int
}

// NewWordPieceTokenizer loads a tokenizer from path: a Hugging Face tokenizer.json,
// or a BERT vocab.txt (uncased, accents stripped, [CLS] ... [SEP]).
func NewWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	var (
		tk  *tokenizer.Tokenizer
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		tk, err = pretrained.FromFile(path)
	} else {
		tk, err = bertFromVocab(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", path, err)
	}
	sepID, ok := tk.TokenToId("[SEP]")
	if !ok {
		return nil, fmt.Errorf("tokenizer %s has no [SEP] token", path)
	}
	return &WordPieceTokenizer{tk: tk, sepID: sepID}, nil
}

func bertFromVocab(vocabPath string) (*tokenizer.Tokenizer, error) {
	model, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]")
	if err != nil {
		return nil, err
	}
	tk := tokenizer.NewTokenizer(model)
	tk.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	tk.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
	tk.AddSpecialTokens([]tokenizer.AddedToken{tokenizer.NewAddedToken("[MASK]", true)})

	sepID, ok := tk.TokenToId("[SEP]")
	if !ok {
		return nil, errors.New("vocabulary has no [SEP] token")
	}
	clsID, ok := tk.TokenToId("[CLS]")
	if !ok {
		return nil, errors.New("vocabulary has no [CLS] token")
	}
	tk.WithPostProcessor(processor.NewBertProcessing(
		processor.PostToken{Id: sepID, Value: "[SEP]"},
		processor.PostToken{Id: clsID, Value: "[CLS]"},
	))
	return tk, nil
}

// FindTokenizerFile returns tokenizer.json or vocab.txt from dir, in that order.
func FindTokenizerFile(dir string) (string, error) {
	for _, name := range []string{TokenizerJSONFile, VocabFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s or %s in %s", TokenizerJSONFile, VocabFile, dir)
}

// Tokenize encodes text as [CLS] tokens [SEP], truncated so that [SEP] stays the
// last real token, and padded with zeros to maxTokens.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	en, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("tokenize: %w", err)
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	n := 0
	for i, id := range en.Ids {
		if i < len(en.AttentionMask) && en.AttentionMask[i] == 0 {
			continue
		}
		if n == maxTokens {
			inputIDs[maxTokens-1] = int64(t.sepID)
			break
		}
		inputIDs[n] = int64(id)
		attentionMask[n] = 1
		if i < len(en.TypeIds) {
			tokenTypeIDs[n] = int64(en.TypeIds[i])
		}
		n++
	}
	return inputIDs, attentionMask, tokenTypeIDs, nil
}
