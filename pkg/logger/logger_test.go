package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	convey.Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		convey.So(InitWithWriter(&buf), convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When logging with fields", func() {
			Get().Info(ctx, "refresh completed",
				String("cycle", "abc"),
				Int("charts", 4),
				Bool("ok", true),
				Duration("took", 1500*time.Millisecond),
				Error(errors.New("boom")))

			convey.Convey("Then the record carries the message, fields and source", func() {
				out := buf.String()
				convey.So(out, convey.ShouldContainSubstring, "refresh completed")
				convey.So(out, convey.ShouldContainSubstring, "cycle=abc")
				convey.So(out, convey.ShouldContainSubstring, "charts=4")
				convey.So(out, convey.ShouldContainSubstring, "ok=true")
				convey.So(out, convey.ShouldContainSubstring, "took=1.5s")
				convey.So(out, convey.ShouldContainSubstring, "error=boom")
				convey.So(out, convey.ShouldContainSubstring, "logger_test.go")
			})
		})

		convey.Convey("When the level is raised to warn", func() {
			convey.So(SetLevelString("warn"), convey.ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			convey.Convey("Then info records are dropped", func() {
				convey.So(buf.String(), convey.ShouldNotContainSubstring, "hidden")
				convey.So(buf.String(), convey.ShouldContainSubstring, "shown")
			})
		})

		convey.Convey("When a named logger with bound fields is used", func() {
			Named("dashboard").With(String("cycle", "c1")).Info(ctx, "tick", Int("n", 1))

			convey.Convey("Then bound fields appear in the output", func() {
				convey.So(buf.String(), convey.ShouldContainSubstring, "c1")
				convey.So(buf.String(), convey.ShouldContainSubstring, "tick")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	convey.Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			convey.So(SetLevelString(lvl), convey.ShouldBeNil)
		}
		convey.So(SetLevelString("verbose"), convey.ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	convey.Convey("Given a nop logger", t, func() {
		l := Nop()
		convey.So(func() {
			l.Info(context.Background(), "ignored")
			l.Named("x").With(Int("a", 1)).Error(context.Background(), "ignored")
		}, convey.ShouldNotPanic)
	})
}
