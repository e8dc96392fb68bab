package logging

import (
	"bytes"
	"context"
	"os/exec"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommandLogger struct {
	RootLogger  *zap.Logger
	StdoutLevel zapcore.Level
	StderrLevel zapcore.Level
	// Dir is the working directory of the command, the current directory when empty.
	Dir string
}

// lineWriter logs each complete line written to it. A trailing partial line is held
// until the next newline or Flush.
type lineWriter struct {
	logger *zap.Logger
	level  zapcore.Level

	mu   sync.Mutex
	tail []byte
}

func (w *lineWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	buf := append(w.tail, p...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		w.log(buf[:i])
		buf = buf[i+1:]
	}
	w.tail = append([]byte(nil), buf...)
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.log(w.tail)
	w.tail = nil
}

func (w *lineWriter) log(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	if ce := w.logger.Check(w.level, string(line)); ce != nil {
		ce.Write()
	}
}

// Command creates an exec.Cmd whose stdout and stderr are logged line by line under the
// "stdout" and "stderr" children of cfg.RootLogger.
func Command(ctx context.Context, cfg CommandLogger, name string, arg ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = cfg.Dir
	cmd.Stdout = &lineWriter{logger: cfg.RootLogger.Named("stdout"), level: cfg.StdoutLevel}
	cmd.Stderr = &lineWriter{logger: cfg.RootLogger.Named("stderr"), level: cfg.StderrLevel}
	return cmd
}

// RunCommand runs a [Command] to completion, logging any unterminated last line of output.
func RunCommand(ctx context.Context, cfg CommandLogger, name string, arg ...string) error {
	cmd := Command(ctx, cfg, name, arg...)
	err := cmd.Run()
	for _, w := range []any{cmd.Stdout, cmd.Stderr} {
		if lw, ok := w.(*lineWriter); ok {
			lw.Flush()
		}
	}
	return err
}
