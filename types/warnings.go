package types

import "fmt"

// Warnings accumulates non-fatal conditions so they can be returned with a successful result
type Warnings []string

func (w *Warnings) Add(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	*w = append(*w, msg)
	return msg
}

func (w Warnings) Len() int { return len(w) }
