package pkg

import (
	"fmt"
	"time"
)

// FormatDuration форматирует duration в удобочитаемый формат
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.2fm", d.Minutes())
	default:
		return fmt.Sprintf("%.2fh", d.Hours())
	}
}

// FormatRate форматирует скорость обработки сообщений
func FormatRate(processed int64, d time.Duration) string {
	if d <= 0 {
		return "0.00 msg/s"
	}
	return fmt.Sprintf("%.2f msg/s", float64(processed)/d.Seconds())
}
