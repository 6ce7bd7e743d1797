package xlog

import (
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xveb/lib/infra"
)

// Entry keys. The component carries the logger name, "veb" for the
// tree loggers, so entries of several trees can be told apart.
const (
	EntryMsgKey       = "msg"
	EntryLvlKey       = "lvl"
	EntryTsKey        = "ts"
	EntryCallerKey    = "callAt"
	EntryComponentKey = "component"
)

var _ XLogCore = (*consoleCore)(nil)

// consoleCore writes one entry per line into a single write syncer.
// Stacktraces are never attached, an infra.ErrorStack field carries
// the frames instead.
type consoleCore struct {
	callerEnc zapcore.CallerEncoder
}

func (cc *consoleCore) encoderConfig(lvlEnc zapcore.LevelEncoder, tsEnc zapcore.TimeEncoder) zapcore.EncoderConfig {
	callerEnc := cc.callerEnc
	if callerEnc == nil {
		callerEnc = zapcore.ShortCallerEncoder
	}
	return zapcore.EncoderConfig{
		MessageKey:     EntryMsgKey,
		LevelKey:       EntryLvlKey,
		TimeKey:        EntryTsKey,
		CallerKey:      EntryCallerKey,
		NameKey:        EntryComponentKey,
		FunctionKey:    coreKeyIgnored,
		StacktraceKey:  coreKeyIgnored,
		EncodeLevel:    lvlEnc,
		EncodeTime:     tsEnc,
		EncodeCaller:   callerEnc,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func (cc *consoleCore) Build(
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) (zapcore.Core, error) {
	if ws == nil {
		return nil, infra.NewErrorStack("[XLogger] console core without write syncer")
	}
	enc := getEncoderByType(encoder)(cc.encoderConfig(lvlEnc, tsEnc))
	return zapcore.NewCore(enc, ws, lvlEnabler), nil
}
