package release

import (
	"fmt"
	"time"
)

type buildLog struct {
	lines []string
	nowFn func() time.Time
}

func newBuildLog(nowFn func() time.Time) *buildLog {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &buildLog{lines: []string{}, nowFn: nowFn}
}

func (l *buildLog) Addf(format string, args ...any) {
	prefix := l.nowFn().UTC().Format(time.RFC3339Nano)
	l.lines = append(l.lines, fmt.Sprintf("%s %s", prefix, fmt.Sprintf(format, args...)))
}

func (l *buildLog) Lines() []string {
	return append([]string(nil), l.lines...)
}
