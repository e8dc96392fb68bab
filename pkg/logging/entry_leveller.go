package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters entries by logger name. A level configured for
// "warmer" also applies to "warmer.artifact" unless that name has its own level.
type EntryLeveller struct {
	zapcore.Core

	levels *sync.Map // map[string]zapcore.Level
	// min is the lowest configured level, so a name can be made louder than the wrapped core.
	min zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	el := &EntryLeveller{Core: core, levels: &sync.Map{}, min: zapcore.FatalLevel}
	for name, lvl := range levels {
		el.levels.Store(name, lvl)
		if lvl < el.min {
			el.min = lvl
		}
	}
	return el
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	return &EntryLeveller{Core: el.Core.With(f), levels: el.levels, min: el.min}
}

func (el *EntryLeveller) Enabled(lvl zapcore.Level) bool {
	return el.Core.Enabled(lvl) || el.min <= lvl
}

// Write bypasses the wrapped core's level, which Check has already decided for this entry.
func (el *EntryLeveller) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return el.Core.Write(e, fields)
}

func (el *EntryLeveller) levelFor(name string) (zapcore.Level, bool) {
	for {
		if lvl, ok := el.levels.Load(name); ok {
			return lvl.(zapcore.Level), true
		}
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			break
		}
		name = name[:idx]
	}
	if lvl, ok := el.levels.Load(""); ok {
		return lvl.(zapcore.Level), true
	}
	return 0, false
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	lvl, ok := el.levelFor(e.LoggerName)
	if !ok {
		return el.Core.Check(e, ce)
	}
	if e.Level < lvl {
		return ce
	}
	return ce.AddCore(e, el)
}
