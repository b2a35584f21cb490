// Package speech envuelve el reconocimiento y la síntesis de voz de la
// plataforma. Si alguna capacidad falta, el controlador avisa y la entrada
// por teclado sigue disponible.
package speech

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

var ErrUnsupported = errors.New("speech not supported")

// Rate es la velocidad relativa de lectura de respuestas.
const Rate = 0.9

// Result es un resultado del reconocedor. Solo los finales llegan al usuario.
type Result struct {
	Transcript string
	Final      bool
	Err        error
}

// Recognizer es el adaptador de reconocimiento de la plataforma. El canal se
// cierra cuando termina la escucha.
type Recognizer interface {
	Start(ctx context.Context, locale string) (<-chan Result, error)
	Stop() error
}

// Synthesizer es el adaptador de síntesis. Speak bloquea hasta terminar o
// hasta que ctx se cancele.
type Synthesizer interface {
	Speak(ctx context.Context, text, locale string) error
}

// Notice es un aviso para el usuario (toast en la UI, línea en la CLI).
type Notice struct {
	Title       string
	Description string
}

var (
	noticeUnsupported = Notice{Title: "Voice not supported", Description: "Type your message."}
	noticeFailed      = Notice{Title: "Voice recognition failed", Description: "Try again or type."}
)

// Controller coordina una escucha y una locución a la vez.
type Controller struct {
	rec    Recognizer
	syn    Synthesizer
	notify func(Notice)
	logger *zap.Logger

	mu           sync.Mutex
	listening    bool
	stopListen   context.CancelFunc
	listenGen    uint64
	speaking     bool
	stopSpeak    context.CancelFunc
	generation   uint64
	warnedListen bool
	warnedSpeak  bool
	wg           sync.WaitGroup
}

// NewController acepta rec o syn nil cuando la plataforma no los ofrece.
func NewController(rec Recognizer, syn Synthesizer, notify func(Notice), logger *zap.Logger) *Controller {
	if notify == nil {
		notify = func(Notice) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{rec: rec, syn: syn, notify: notify, logger: logger}
}

// StartListening inicia una escucha. onFinal recibe transcripciones finales;
// onError recibe fallos de la plataforma, o io.EOF sin aviso si la entrada
// terminó. Sin reconocedor devuelve ErrUnsupported y avisa una sola vez.
func (c *Controller) StartListening(ctx context.Context, locale string, onFinal func(string), onError func(error)) error {
	c.mu.Lock()
	if c.rec == nil {
		warn := !c.warnedListen
		c.warnedListen = true
		c.mu.Unlock()
		if warn {
			c.notify(noticeUnsupported)
		}
		return ErrUnsupported
	}
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	listenCtx, cancel := context.WithCancel(ctx)
	results, err := c.rec.Start(listenCtx, locale)
	if err != nil {
		cancel()
		c.mu.Unlock()
		c.notify(noticeFailed)
		return err
	}
	c.listenGen++
	gen := c.listenGen
	c.listening = true
	c.stopListen = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer cancel()
		c.consume(listenCtx, gen, results, onFinal, onError)
	}()
	return nil
}

// consume atiende una sola escucha. gen la identifica para no tocar el estado
// de una escucha posterior iniciada desde los callbacks.
func (c *Controller) consume(ctx context.Context, gen uint64, results <-chan Result, onFinal func(string), onError func(error)) {
	defer c.wg.Done()
	defer c.resetListening(gen)
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			if errors.Is(r.Err, io.EOF) {
				c.resetListening(gen)
				if onError != nil {
					onError(r.Err)
				}
				return
			}
			if r.Err != nil {
				c.logger.Warn("speech recognition failed", zap.Error(r.Err))
				c.resetListening(gen)
				c.notify(noticeFailed)
				if onError != nil {
					onError(r.Err)
				}
				return
			}
			if r.Final && onFinal != nil {
				c.resetListening(gen)
				onFinal(r.Transcript)
				return
			}
		}
	}
}

func (c *Controller) StopListening() {
	c.mu.Lock()
	active := c.listening
	gen := c.listenGen
	c.mu.Unlock()
	if !active {
		return
	}
	if err := c.rec.Stop(); err != nil {
		c.logger.Debug("stop recognizer", zap.Error(err))
	}
	c.resetListening(gen)
}

// resetListening cierra la escucha gen si sigue siendo la actual.
func (c *Controller) resetListening(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listenGen != gen || !c.listening {
		return
	}
	c.listening = false
	if c.stopListen != nil {
		c.stopListen()
		c.stopListen = nil
	}
}

// Speak cancela la locución en curso y lee text. No bloquea.
func (c *Controller) Speak(ctx context.Context, text, locale string) error {
	c.mu.Lock()
	if c.syn == nil {
		warn := !c.warnedSpeak
		c.warnedSpeak = true
		c.mu.Unlock()
		if warn {
			c.notify(noticeUnsupported)
		}
		return ErrUnsupported
	}
	if c.stopSpeak != nil {
		c.stopSpeak()
	}
	speakCtx, cancel := context.WithCancel(ctx)
	c.generation++
	gen := c.generation
	c.speaking = true
	c.stopSpeak = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		err := c.syn.Speak(speakCtx, text, locale)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("speech synthesis failed", zap.Error(err))
		}
		c.mu.Lock()
		if c.generation == gen {
			c.speaking = false
			c.stopSpeak = nil
		}
		c.mu.Unlock()
		cancel()
	}()
	return nil
}

func (c *Controller) StopSpeaking() {
	c.mu.Lock()
	if c.stopSpeak != nil {
		c.stopSpeak()
		c.stopSpeak = nil
	}
	c.speaking = false
	c.mu.Unlock()
}

func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// InputEnabled indica si el usuario puede escribir. Solo se bloquea mientras
// se escucha.
func (c *Controller) InputEnabled() bool {
	return !c.Listening()
}

// ListenSupported y SpeakSupported permiten ocultar controles de voz.
func (c *Controller) ListenSupported() bool { return c.rec != nil }
func (c *Controller) SpeakSupported() bool  { return c.syn != nil }

// Close detiene todo y espera a las goroutines del controlador.
func (c *Controller) Close() {
	c.StopListening()
	c.StopSpeaking()
	c.wg.Wait()
}
