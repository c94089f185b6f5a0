package domain

import (
	"fmt"
	"time"
)

const DisplayTimeLayout = "02-01-2006 15:04"

type HistoryRecord struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

func (r HistoryRecord) DisplayLine() string {
	return FormatDisplayLine(r.At, r.Text)
}

func FormatDisplayLine(at time.Time, text string) string {
	return fmt.Sprintf("[%s] %s", at.Format(DisplayTimeLayout), text)
}
