package log

import (
	"fmt"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Fields logrus.Fields

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

// EntryZ is a zero-allocation-style log statement builder. Fields are
// accumulated in a fixed buffer and only rendered if the statement is
// actually emitted. A disabled entry (debug on a muted module) is a single
// branch per field call.
type EntryZ struct {
	mod     Module
	lvl     level
	msg     string
	enabled bool

	zfbuf [8]zfield
	zfidx int
}

type zfield struct {
	key string
	val string
}

func (mod Module) entryZ(lvl level, msg string) *EntryZ {
	enabled := true
	if lvl == levelDebug {
		enabled = modDebugMask&mod.mask() != 0
	}
	return &EntryZ{mod: mod, lvl: lvl, msg: msg, enabled: enabled}
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.entryZ(levelDebug, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.entryZ(levelInfo, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.entryZ(levelWarn, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.entryZ(levelError, msg) }
func (mod Module) FatalZ(msg string) *EntryZ { return mod.entryZ(levelFatal, msg) }

func (e *EntryZ) add(key, val string) *EntryZ {
	if !e.enabled {
		return e
	}
	if e.zfidx < len(e.zfbuf) {
		e.zfbuf[e.zfidx] = zfield{key: key, val: val}
		e.zfidx++
	}
	return e
}

func (e *EntryZ) String(key, val string) *EntryZ { return e.add(key, val) }
func (e *EntryZ) Bool(key string, val bool) *EntryZ {
	if !e.enabled {
		return e
	}
	if val {
		return e.add(key, "true")
	}
	return e.add(key, "false")
}

func (e *EntryZ) Hex8(key string, val uint8) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%02x", val))
}

func (e *EntryZ) Hex16(key string, val uint16) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%04x", val))
}

func (e *EntryZ) Hex32(key string, val uint32) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%08x", val))
}

func (e *EntryZ) Uint8(key string, val uint8) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%d", val))
}

func (e *EntryZ) Uint16(key string, val uint16) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%d", val))
}

func (e *EntryZ) Uint32(key string, val uint32) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%d", val))
}

func (e *EntryZ) Uint64(key string, val uint64) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%d", val))
}

func (e *EntryZ) Int(key string, val int) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, fmt.Sprintf("%d", val))
}

func (e *EntryZ) Duration(key string, val time.Duration) *EntryZ {
	if !e.enabled {
		return e
	}
	return e.add(key, val.String())
}

func (e *EntryZ) Error(key string, err error) *EntryZ {
	if !e.enabled {
		return e
	}
	if err == nil {
		return e.add(key, "<nil>")
	}
	return e.add(key, err.Error())
}

// End emits the log statement.
func (e *EntryZ) End() {
	if !e.enabled {
		return
	}
	fields := make(logrus.Fields, e.zfidx+1)
	fields["_mod"] = modNames[e.mod]
	for _, f := range e.zfbuf[:e.zfidx] {
		fields[f.key] = f.val
	}
	entry := logrus.StandardLogger().WithFields(fields)
	switch e.lvl {
	case levelDebug:
		entry.Debug(e.msg)
	case levelInfo:
		entry.Info(e.msg)
	case levelWarn:
		entry.Warn(e.msg)
	case levelError:
		entry.Error(e.msg)
	case levelFatal:
		entry.Fatal(e.msg)
	}
}
