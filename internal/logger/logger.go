package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "services-marketplace"

// Log глобальный логгер. До вызова Init пишет в stderr с уровнем info,
// поэтому пакеты и тесты могут логировать без инициализации.
var Log = logrus.New()

// Init настраивает логгер под окружение: в development человекочитаемый текст,
// в остальных окружениях JSON с полем service.
func Init(level, env string) {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(level))
	l.SetFormatter(formatterFor(env))
	if env != "development" {
		l.AddHook(staticFieldsHook{fields: logrus.Fields{"service": serviceName, "env": env}})
	}
	Log = l
}

// Discard глушит вывод, используется в тестах.
func Discard() {
	Log.SetOutput(io.Discard)
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func formatterFor(env string) logrus.Formatter {
	if env == "development" {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}

// staticFieldsHook добавляет постоянные поля в каждую запись, не перетирая заданные явно.
type staticFieldsHook struct {
	fields logrus.Fields
}

func (h staticFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h staticFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
