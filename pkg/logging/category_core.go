package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// CategoryCore writes every entry to <dir>/<category>.log, where the category is the first
// segment of the logger name (eg "npm" for "npm.stdout"). Entries from the root logger are
// dropped. Files are truncated the first time a category is written in a run.
type CategoryCore struct {
	encoder zapcore.Encoder
	dir     string
	files   *categoryFiles
}

type categoryFiles struct {
	mu    sync.Mutex
	files map[string]*os.File
}

func NewCategoryCore(enc zapcore.Encoder, dir string) *CategoryCore {
	return &CategoryCore{
		encoder: enc,
		dir:     dir,
		files:   &categoryFiles{files: make(map[string]*os.File)},
	}
}

func (c *CategoryCore) Enabled(zapcore.Level) bool {
	return true
}

func (c *CategoryCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &CategoryCore{encoder: c.encoder.Clone(), dir: c.dir, files: c.files}
	for i := range fields {
		fields[i].AddTo(clone.encoder)
	}
	return clone
}

func (c *CategoryCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *CategoryCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	category, rest, _ := strings.Cut(ent.LoggerName, ".")
	category = strings.ReplaceAll(strings.TrimSpace(category), string(os.PathSeparator), "_")
	if category == "" {
		return nil
	}
	f, err := c.files.open(c.dir, category)
	if err != nil {
		return err
	}

	// the file already names the category
	ent.LoggerName = rest
	buf, err := c.encoder.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	if ent.Level > zapcore.ErrorLevel {
		return f.Sync()
	}
	return nil
}

func (c *CategoryCore) Sync() error {
	c.files.mu.Lock()
	defer c.files.mu.Unlock()
	var merr error
	for _, f := range c.files.files {
		merr = multierr.Append(merr, f.Sync())
	}
	return merr
}

func (fs *categoryFiles) open(dir, category string) (*os.File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.files[category]; ok {
		return f, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, category+".log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	fs.files[category] = f
	return f, nil
}
