package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ecovision/internal/service"
	"ecovision/internal/speech"
)

// speakDelay separa la respuesta impresa de su lectura en voz alta.
const speakDelay = 300 * time.Millisecond

func (c *cli) chatCmd() *cobra.Command {
	var (
		lang  string
		voice bool
		speak bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the farming assistant",
		Long: `Talk to the farming assistant in any supported language.

Inside the chat:
  /lang <code>  switch language and restart the conversation
  <number>      ask one of the quick questions
  /quit         leave`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runChat(cmd, lang, voice, speak)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Language code (en, hi, ta, ...)")
	cmd.Flags().BoolVar(&voice, "voice", false, "Dictation mode: each stdin line is a voice transcript")
	cmd.Flags().BoolVar(&speak, "speak", false, "Read replies aloud with TTS_COMMAND")
	return cmd
}

func (c *cli) runChat(cmd *cobra.Command, lang string, voice, speak bool) error {
	ctx := cmd.Context()
	out, errOut, in := cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin()
	langs := c.svcs.Languages

	if lang != "" {
		if _, err := langs.SetLanguage(ctx, c.clientID, lang); err != nil {
			return fmt.Errorf("language %q: %w", lang, err)
		}
	}

	var rec speech.Recognizer
	if voice {
		lines := speech.NewLineRecognizer(in)
		defer lines.Close()
		rec = lines
	}
	var syn speech.Synthesizer
	if speak {
		s, err := speech.NewExecSynthesizer(c.cfg.TTSCommand)
		if err != nil {
			c.logger.Debug("tts unavailable", zap.Error(err))
		} else {
			syn = s
		}
	}
	ctrl := speech.NewController(rec, syn, func(n speech.Notice) {
		fmt.Fprintf(errOut, "! %s. %s\n", n.Title, n.Description)
	}, c.logger)
	defer ctrl.Close()

	quick := c.svcs.Chat.QuickQuestions()
	c.printWelcome(ctx, out)

	scanner := bufio.NewScanner(in)
	next := func() (string, error) {
		tr := langs.Translator(ctx, c.clientID)
		if !voice {
			fmt.Fprint(out, "you> ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			return scanner.Text(), nil
		}
		return listenOnce(ctx, ctrl, tr.SpeechLocale(), func() { fmt.Fprintln(out, tr.T("listening")) })
	}

	for {
		line, err := next()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case line == "/quit", strings.EqualFold(line, "exit"):
			return nil
		case strings.HasPrefix(line, "/lang"):
			code := strings.TrimSpace(strings.TrimPrefix(line, "/lang"))
			if _, err := langs.SetLanguage(ctx, c.clientID, code); err != nil {
				fmt.Fprintf(errOut, "! unsupported language %q\n", code)
				continue
			}
			ctrl.StopSpeaking()
			c.printWelcome(ctx, out)
			continue
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(quick) {
			line = quick[n-1].Text
		}
		if voice {
			fmt.Fprintf(out, "you> %s\n", line)
		}

		tr := langs.Translator(ctx, c.clientID)
		fmt.Fprintln(out, tr.T("typing"))
		_, reply, err := c.svcs.Chat.Send(ctx, c.clientID, line, "")
		if errors.Is(err, service.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "assistant> %s\n", reply.Content)
		for _, s := range reply.Suggestions {
			fmt.Fprintf(out, "  · %s\n", s)
		}

		if speak {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(speakDelay):
			}
			if err := ctrl.Speak(ctx, reply.Content, tr.SpeechLocale()); err != nil && !errors.Is(err, speech.ErrUnsupported) {
				c.logger.Warn("speak failed", zap.Error(err))
			}
		}
	}
}

func (c *cli) printWelcome(ctx context.Context, out io.Writer) {
	tr := c.svcs.Languages.Translator(ctx, c.clientID)
	welcome := c.svcs.Chat.Welcome(ctx, c.clientID)
	fmt.Fprintf(out, "assistant> %s\n", welcome.Content)
	fmt.Fprintf(out, "%s:\n", tr.T("quickQuestions"))
	for i, q := range c.svcs.Chat.QuickQuestions() {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, q.Text)
	}
}

// listenOnce espera una transcripción final del controlador.
func listenOnce(ctx context.Context, ctrl *speech.Controller, locale string, prompt func()) (string, error) {
	finals := make(chan string, 1)
	errs := make(chan error, 1)
	prompt()
	err := ctrl.StartListening(ctx, locale,
		func(s string) { finals <- s },
		func(err error) { errs <- err },
	)
	if err != nil {
		return "", err
	}
	select {
	case s := <-finals:
		return s, nil
	case err := <-errs:
		return "", err
	case <-ctx.Done():
		ctrl.StopListening()
		return "", ctx.Err()
	}
}
