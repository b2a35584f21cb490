package speech

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineRecognizer trata cada línea leída como una transcripción final. La CLI
// lo usa para dictado por stdin o por un pipe de un motor externo. Al agotarse
// la entrada entrega io.EOF.
//
// Una sola goroutine lee la entrada durante toda la vida del reconocedor; cada
// escucha toma la siguiente línea del canal lines.
type LineRecognizer struct {
	r        io.Reader
	readOnce sync.Once
	lines    chan Result
	done     chan struct{}
	endErr   error

	mu        sync.Mutex
	stop      chan struct{}
	closeOnce sync.Once
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{
		r:     r,
		lines: make(chan Result),
		done:  make(chan struct{}),
	}
}

// read entrega líneas hasta agotar la entrada y luego cierra lines. endErr se
// escribe antes del cierre.
func (l *LineRecognizer) read() {
	scanner := bufio.NewScanner(l.r)
	for scanner.Scan() {
		select {
		case l.lines <- Result{Transcript: strings.TrimSpace(scanner.Text()), Final: true}:
		case <-l.done:
			return
		}
	}
	l.endErr = scanner.Err()
	if l.endErr == nil {
		l.endErr = io.EOF
	}
	close(l.lines)
}

func (l *LineRecognizer) Start(ctx context.Context, _ string) (<-chan Result, error) {
	l.readOnce.Do(func() { go l.read() })

	l.mu.Lock()
	l.stop = make(chan struct{})
	stop := l.stop
	l.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		select {
		case r, ok := <-l.lines:
			if !ok {
				r = Result{Err: l.endErr}
			}
			out <- r
		case <-ctx.Done():
		case <-stop:
		case <-l.done:
		}
	}()
	return out, nil
}

func (l *LineRecognizer) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
	return nil
}

// Close libera la goroutine lectora si está esperando a entregar una línea.
// Si está bloqueada leyendo la entrada, termina cuando la entrada se cierre.
func (l *LineRecognizer) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}
