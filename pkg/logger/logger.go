package logger

import (
	"os"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

type Config struct {
	Level  LogLevel `json:"level"`
	Format string   `json:"format"` // json, text
	Output string   `json:"output"` // stdout, stderr, file path
}

// Logger wraps a logrus entry so derived loggers share the sink while
// carrying their own fields.
type Logger struct {
	entry *logrus.Entry
}

func NewLogger(config *Config) (*Logger, error) {
	base := logrus.New()

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch config.Format {
	case "text":
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		base.SetFormatter(&logrus.JSONFormatter{})
	}

	switch config.Output {
	case "", "stdout":
		base.SetOutput(os.Stdout)
	case "stderr":
		base.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		base.SetOutput(file)
	}

	return &Logger{entry: logrus.NewEntry(base)}, nil
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) WithUserID(userID primitive.ObjectID) *Logger {
	return l.WithField("user_id", userID.Hex())
}

func (l *Logger) WithAdminID(adminID primitive.ObjectID) *Logger {
	return l.WithField("admin_id", adminID.Hex())
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }
func (l *Logger) Fatal(msg string) { l.entry.Fatal(msg) }

// LogAdminAction records a privileged operation against the actor who
// performed it. These lines back the audit trail during investigations.
func (l *Logger) LogAdminAction(adminID primitive.ObjectID, action string, details map[string]interface{}) {
	l.WithAdminID(adminID).
		WithFields(details).
		WithFields(map[string]interface{}{"action": action, "type": "admin_action"}).
		Info("admin action")
}

// LogWorkflowEvent records a lifecycle step in the onboarding or savings
// workflows for a member.
func (l *Logger) LogWorkflowEvent(userID primitive.ObjectID, event string, details map[string]interface{}) {
	l.WithUserID(userID).
		WithFields(details).
		WithFields(map[string]interface{}{"event": event, "type": "workflow_event"}).
		Info("workflow event")
}

// LogTransactionEvent records a ledger movement.
func (l *Logger) LogTransactionEvent(txID primitive.ObjectID, event string, amount float64, txType string) {
	l.WithFields(map[string]interface{}{
		"transaction_id":   txID.Hex(),
		"event":            event,
		"amount":           amount,
		"transaction_type": txType,
		"type":             "transaction_event",
	}).Info("transaction event")
}
