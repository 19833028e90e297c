package prompt

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type keep struct{}

// Keep answers any prompt with its default.
var Keep = keep{}

// Script is a Driver that replays answers in order. Input, Password and
// TextArea take strings; Confirm takes bools; Select takes an option index or
// a label, matched exactly and then by prefix. Keep accepts the default.
// Info messages and prompt titles are recorded.
type Script struct {
	mu      sync.Mutex
	answers []any
	pos     int
	prompts []string
	infos   []string
}

var _ Driver = (*Script)(nil)

// NewScript returns a script with answers queued.
func NewScript(answers ...any) *Script {
	return &Script{answers: append([]any(nil), answers...)}
}

// Push queues more answers.
func (s *Script) Push(answers ...any) {
	s.mu.Lock()
	s.answers = append(s.answers, answers...)
	s.mu.Unlock()
}

// Remaining returns the number of unused answers.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers) - s.pos
}

// Prompts returns the messages of every prompt asked so far.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Infos returns every message passed to Info.
func (s *Script) Infos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.infos...)
}

// Output joins Infos with newlines.
func (s *Script) Output() string {
	return strings.Join(s.Infos(), "\n")
}

func (s *Script) next(ctx context.Context, message string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, message)
	if s.pos >= len(s.answers) {
		return nil, fmt.Errorf("%w at %q", ErrScriptExhausted, message)
	}
	answer := s.answers[s.pos]
	s.pos++
	return answer, nil
}

func (s *Script) text(ctx context.Context, message, def string, validate func(string) error) (string, error) {
	for {
		answer, err := s.next(ctx, message)
		if err != nil {
			return "", err
		}
		var value string
		switch v := answer.(type) {
		case keep:
			value = def
		case string:
			value = v
		default:
			return "", fmt.Errorf("prompt: %q wants a string answer, got %T", message, answer)
		}
		if validate != nil {
			if err := validate(value); err != nil {
				s.record(err.Error())
				continue
			}
		}
		return value, nil
	}
}

func (s *Script) record(msg string) {
	s.mu.Lock()
	s.infos = append(s.infos, msg)
	s.mu.Unlock()
}

func (s *Script) Input(ctx context.Context, cfg InputConfig) (string, error) {
	return s.text(ctx, cfg.Message, cfg.Default, cfg.Validator)
}

func (s *Script) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return s.text(ctx, cfg.Message, cfg.Default, cfg.Validator)
}

func (s *Script) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return s.text(ctx, cfg.Message, cfg.Default, nil)
}

func (s *Script) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	answer, err := s.next(ctx, cfg.Message)
	if err != nil {
		return false, err
	}
	switch v := answer.(type) {
	case keep:
		return cfg.Default, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("prompt: %q wants a bool answer, got %T", cfg.Message, answer)
	}
}

func (s *Script) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	answer, err := s.next(ctx, cfg.Message)
	if err != nil {
		return -1, err
	}
	switch v := answer.(type) {
	case keep:
		if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
			return cfg.DefaultIndex, nil
		}
		return -1, fmt.Errorf("prompt: %q has no default option", cfg.Message)
	case int:
		if v < 0 || v >= len(cfg.Options) {
			return -1, fmt.Errorf("prompt: %q has no option %d", cfg.Message, v)
		}
		return v, nil
	case string:
		if i := indexOf(cfg.Options, v); i >= 0 {
			return i, nil
		}
		for i, option := range cfg.Options {
			if strings.HasPrefix(option, v) {
				return i, nil
			}
		}
		return -1, fmt.Errorf("prompt: %q has no option %q in %q", cfg.Message, v, cfg.Options)
	default:
		return -1, fmt.Errorf("prompt: %q wants an index or label, got %T", cfg.Message, answer)
	}
}

func (s *Script) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.record(msg)
	return nil
}
