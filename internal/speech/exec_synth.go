package speech

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecSynthesizer lee texto con un binario TTS local (espeak-ng, espeak,
// spd-say o say). Cancelar ctx mata el proceso.
type ExecSynthesizer struct {
	path string
	name string
	run  func(ctx context.Context, path string, args ...string) error
}

// NewExecSynthesizer busca command en PATH; si no está devuelve ErrUnsupported.
func NewExecSynthesizer(command string) (*ExecSynthesizer, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, ErrUnsupported
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnsupported, command)
	}
	return &ExecSynthesizer{
		path: path,
		name: filepath.Base(command),
		run: func(ctx context.Context, path string, args ...string) error {
			return exec.CommandContext(ctx, path, args...).Run()
		},
	}, nil
}

func (s *ExecSynthesizer) Speak(ctx context.Context, text, locale string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	err := s.run(ctx, s.path, s.args(text, locale)...)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *ExecSynthesizer) args(text, locale string) []string {
	lang, _, _ := strings.Cut(locale, "-")
	switch s.name {
	case "espeak", "espeak-ng":
		return []string{"-v", lang, "-s", strconv.Itoa(wordsPerMinute()), text}
	case "spd-say":
		return []string{"-w", "-l", lang, "-r", "-10", text}
	case "say":
		return []string{"-r", strconv.Itoa(wordsPerMinute()), text}
	default:
		return []string{text}
	}
}

// wordsPerMinute aplica Rate sobre la velocidad por defecto de espeak y say.
func wordsPerMinute() int {
	return int(math.Round(175 * Rate))
}
