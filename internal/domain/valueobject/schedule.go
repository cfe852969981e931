package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/ignatzorin/services-marketplace/internal/pkg/apperror"
)

const (
	clockLayout      = "15:04:05"
	clockShortLayout = "15:04"
	dateLayout       = "2006-01-02"
)

// ClockTime хранит время суток без даты (колонка TIME).
type ClockTime struct {
	time.Time
}

// ParseClockTime принимает HH:MM и HH:MM:SS.
func ParseClockTime(value string) (ClockTime, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{clockLayout, clockShortLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return ClockTime{Time: t}, nil
		}
	}
	return ClockTime{}, apperror.New(apperror.ErrCodeValidation, "время должно быть в формате HH:MM или HH:MM:SS").
		WithDetails(map[string]interface{}{"value": value})
}

func (c ClockTime) String() string {
	return c.Format(clockLayout)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	parsed, err := ParseClockTime(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value отдаёт время в формате, который Postgres принимает для TIME.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan: lib/pq отдаёт TIME как time.Time с нулевой датой, другие драйверы строкой.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		c.Time = time.Date(0, 1, 1, v.Hour(), v.Minute(), v.Second(), 0, time.UTC)
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	}
	return fmt.Errorf("clock time: unsupported scan type %T", src)
}

func (c *ClockTime) scanString(value string) error {
	parsed, err := ParseClockTime(value)
	if err != nil {
		return fmt.Errorf("clock time: %w", err)
	}
	*c = parsed
	return nil
}

// Date хранит календарную дату без времени (колонка DATE).
type Date struct {
	time.Time
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, apperror.New(apperror.ErrCodeValidation, "дата должна быть в формате YYYY-MM-DD").
			WithDetails(map[string]interface{}{"value": value})
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	}
	return fmt.Errorf("date: unsupported scan type %T", src)
}

func (d *Date) scanString(value string) error {
	// драйвер может вернуть дату с временем, берём только первые 10 символов
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	*d = parsed
	return nil
}
