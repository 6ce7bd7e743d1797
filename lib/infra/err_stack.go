package infra

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go

const errorStackMaxDepth = 16

// Frame is a program counter captured by runtime.Callers.
type Frame uintptr

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) location() (fn, file string, line int) {
	pc := frame.pc()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "unknownFunc", "unknownFile", 0
	}
	file, line = f.FileLine(pc)
	return f.Name(), file, line
}

// Format characters:
// %s - source file base name
// %d - source line
// %n - function name without the package path
// %v - equivalent to %s:%d
// %+v - full function name and full file path, <func> <path>:<line>
func (frame Frame) Format(s fmt.State, verb rune) {
	fn, file, line := frame.location()
	switch verb {
	case 's':
		_, _ = io.WriteString(s, path.Base(file))
	case 'd':
		_, _ = io.WriteString(s, strconv.Itoa(line))
	case 'n':
		_, _ = io.WriteString(s, funcName(fn))
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.String())
			return
		}
		_, _ = io.WriteString(s, path.Base(file))
		_, _ = io.WriteString(s, ":")
		_, _ = io.WriteString(s, strconv.Itoa(line))
	}
}

func (frame Frame) String() string {
	fn, file, line := frame.location()
	if fn == "unknownFunc" {
		return "unknownFrame"
	}
	builder := strings.Builder{}
	_, _ = builder.WriteString(fn)
	_, _ = builder.WriteString(" ")
	_, _ = builder.WriteString(file)
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(line))
	return builder.String()
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

// ErrorStack is an error carrying the call frames where it was created.
// It is marshalled as a zap object, so the frames can be inlined into
// a structured log entry instead of the zap plain text stacktrace.
type ErrorStack interface {
	error
	zapcore.ObjectMarshaler
	Unwrap() error
	Frames() []Frame
}

var _ ErrorStack = (*errorStack)(nil)

type errorStack struct {
	err    error
	frames []Frame
}

func (es *errorStack) Error() string {
	return es.err.Error()
}

func (es *errorStack) Unwrap() error {
	return es.err
}

func (es *errorStack) Frames() []Frame {
	return es.frames
}

func (es *errorStack) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("error", es.err.Error())
	return enc.AddArray("errorStack", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, frame := range es.frames {
			arr.AppendString(frame.String())
		}
		return nil
	}))
}

// callers skips runtime.Callers, callers itself and the exported
// constructor, so the first frame is the constructor's caller.
func callers() []Frame {
	var pcs [errorStackMaxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		frames[i] = Frame(pcs[i])
	}
	return frames
}

func NewErrorStack(msg string) ErrorStack {
	return &errorStack{
		err:    fmt.Errorf("%s", msg),
		frames: callers(),
	}
}

// WrapErrorStack returns nil for a nil error and the error itself
// if it is already an ErrorStack.
func WrapErrorStack(err error) ErrorStack {
	if err == nil {
		return nil
	}
	if es, ok := err.(ErrorStack); ok {
		return es
	}
	return &errorStack{
		err:    err,
		frames: callers(),
	}
}

// WrapErrorStackWithMessage keeps err reachable by errors.Is and errors.As.
func WrapErrorStackWithMessage(err error, msg string) ErrorStack {
	if err == nil {
		return nil
	}
	return &errorStack{
		err:    fmt.Errorf("%s: %w", msg, err),
		frames: callers(),
	}
}

// AppendErrorStack combines errs into es by multierr.
// The frames of es are kept, a nil es captures new frames.
func AppendErrorStack(es ErrorStack, errs ...error) ErrorStack {
	merged := multierr.Combine(errs...)
	if es == nil {
		if merged == nil {
			return nil
		}
		return &errorStack{
			err:    merged,
			frames: callers(),
		}
	}
	if merged == nil {
		return es
	}
	return &errorStack{
		err:    multierr.Append(es.Unwrap(), merged),
		frames: es.Frames(),
	}
}
