package log

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var std = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "action",
		},
	})
	return l
}

// Logger exposes the shared logger for packages that log outside a request.
func Logger() *logrus.Logger { return std }

// Setup sets the minimum level and the sinks. With no writers the output
// stays on stdout.
func Setup(level string, writers ...io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	switch len(writers) {
	case 0:
	case 1:
		std.SetOutput(writers[0])
	default:
		std.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// SetOutput swaps the sink and returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	old := std.Out
	std.SetOutput(w)
	return old
}

func write(level logrus.Level, audit bool, c *fiber.Ctx, action string, err error, fields map[string]any) {
	f := logrus.Fields{}
	if audit {
		f["audit"] = true
	}
	if c != nil {
		f["ip"] = c.IP()
		f["method"] = c.Method()
		f["path"] = c.Path()
		if st := c.Response().StatusCode(); st != 0 {
			f["status"] = st
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			f["req_id"] = rid
		}
	}
	if len(fields) > 0 {
		f["fields"] = fields
	}
	e := std.WithFields(f)
	if err != nil {
		e = e.WithField(logrus.ErrorKey, err.Error())
	}
	e.Log(level, action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, false, c, action, nil, fields)
}

// Audit records a state change made through the admin screens.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, true, c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.WarnLevel, false, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logrus.ErrorLevel, false, c, action, err, fields)
}
