package main

import (
	"fmt"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/jadenpxrk/remix/internal/config"
	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/packer"
)

const (
	defaultTiktokenModel = "gpt-4o"
	defaultHFModel       = "gpt2"
)

type tiktokenCounter struct {
	ttk *tiktoken.Tiktoken
}

func (c *tiktokenCounter) CountTokens(text string) int {
	return len(c.ttk.EncodeOrdinary(text))
}

// hfCounter serializes access to the HuggingFace tokenizer, which is shared
// by all packing workers.
type hfCounter struct {
	mu  sync.Mutex
	htk *hf.Tokenizer
}

func (c *hfCounter) CountTokens(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	en, err := c.htk.EncodeSingle(text)
	if err != nil {
		logger := logging.GetLogger("tokens")
		logger.Warn().Err(err).Msg("HuggingFace tokenizer failed to encode text")
		return 0
	}
	return len(en.Tokens)
}

// newTokenCounter builds the counter selected by cfg. It returns nil when
// token counting is disabled.
func newTokenCounter(cfg config.TokensConfig) (packer.TokenCounter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	logger := logging.GetLogger("tokens")
	logger.Debug().Str("tokenizer", cfg.Tokenizer).Str("model", cfg.Model).Str("file", cfg.File).Msg("Initializing tokenizer")

	switch strings.ToLower(cfg.Tokenizer) {
	case "", "tiktoken":
		return loadTiktoken(cfg.Model)
	case "huggingface":
		return loadHuggingFace(cfg.Model, cfg.File)
	}
	return nil, fmt.Errorf("unsupported tokenizer type: %s. Use 'tiktoken' or 'huggingface'", cfg.Tokenizer)
}

func loadTiktoken(model string) (packer.TokenCounter, error) {
	logger := logging.GetLogger("tokens")
	if model == "" {
		model = defaultTiktokenModel
	}

	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn().Err(err).Str("model", model).Msgf("Tiktoken model not found, falling back to %s", defaultTiktokenModel)
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &tiktokenCounter{ttk: tke}, nil
}

func loadHuggingFace(model, file string) (packer.TokenCounter, error) {
	logger := logging.GetLogger("tokens")

	if file == "" {
		if model == "" {
			model = defaultHFModel
		}
		logger.Info().Str("model", model).Msg("Loading HuggingFace tokenizer (this may download files)")

		var err error
		file, err = hf.CachedPath(model, "tokenizer.json")
		if err != nil {
			return nil, fmt.Errorf("failed to get cache path for model %s: %w", model, err)
		}
	}

	htk, err := pretrained.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", file, err)
	}
	return &hfCounter{htk: htk}, nil
}
