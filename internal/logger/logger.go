package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Option func(*logrus.Logger)

// WithLevel задает уровень логирования. Пустое или нераспознанное значение игнорируется.
func WithLevel(level string) Option {
	return func(l *logrus.Logger) {
		if level == "" {
			return
		}
		if parsed, err := logrus.ParseLevel(level); err == nil {
			l.SetLevel(parsed)
		}
	}
}

// New инициализирует логгер.
func New(output io.Writer, opts ...Option) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))
	l.SetLevel(logrus.InfoLevel)

	// перезаписываем ряд настроек для окружений отличных от продакшн
	if os.Getenv("GIN_MODE") != "release" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(new(logrus.TextFormatter))
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Component возвращает запись лога с полем component, так помечаются фоновые компоненты приложения.
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}
