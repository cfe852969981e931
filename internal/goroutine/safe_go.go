package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/services-marketplace/internal/logger"
	"github.com/ignatzorin/services-marketplace/internal/metrics"
)

// SafeGo запускает фоновую задачу. Паника задачи не роняет процесс:
// она логируется со стеком и учитывается в goroutine_panics_total.
func SafeGo(task string, fn func()) {
	go func() {
		defer recoverTask(task)
		fn()
	}()
}

// SafeGoWithContext то же, что SafeGo, для задач с контекстом.
func SafeGoWithContext(ctx context.Context, task string, fn func(context.Context)) {
	go func() {
		defer recoverTask(task)
		fn(ctx)
	}()
}

// Run выполняет fn синхронно и превращает панику в ошибку.
func Run(task string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			report(task, r)
			err = fmt.Errorf("%s: panic: %v", task, r)
		}
	}()
	fn()
	return nil
}

func recoverTask(task string) {
	if r := recover(); r != nil {
		report(task, r)
	}
}

func report(task string, r interface{}) {
	metrics.GoroutinePanicsTotal.WithLabelValues(task).Inc()
	logger.Log.WithFields(logrus.Fields{
		"task":  task,
		"stack": string(debug.Stack()),
	}).Errorf("goroutine: panic: %v", r)
}
