package clicommon

import "strconv"

// LevelledFlag counts repeated boolean flags (`-vv`) and also accepts an explicit level (`--verbose=2`).
type LevelledFlag int

const (
	// VerboseDebug enables debug logs and full error details.
	VerboseDebug LevelledFlag = 1
	// VerboseAll additionally shows subprocess output (npm) that is otherwise held at warn.
	VerboseAll LevelledFlag = 2
)

func (f *LevelledFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		l, intErr := strconv.ParseInt(s, 10, 64)
		if intErr != nil {
			return err
		}
		if l < 0 {
			l = 0
		}
		*f = LevelledFlag(l)
		return nil
	}
	if v {
		*f++
	} else if *f > 0 {
		*f--
	}
	return nil
}

func (f *LevelledFlag) Type() string {
	return "count"
}

func (f *LevelledFlag) String() string {
	return strconv.FormatInt(int64(*f), 10)
}

func (f LevelledFlag) AtLeast(level LevelledFlag) bool {
	return f >= level
}
