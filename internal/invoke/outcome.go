package invoke

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultErrorMaxLen bounds user-visible error messages.
const DefaultErrorMaxLen = 300

// Outcome is the result for one configuration: a cost or an error message.
type Outcome struct {
	Cost *float64 `json:"cost,omitempty"`
	Err  string   `json:"error,omitempty"`
	// Kind classifies Err; empty on success.
	Kind Kind `json:"-"`
}

// OK reports whether the outcome carries a cost.
func (o Outcome) OK() bool { return o.Cost != nil }

// Success wraps v.
func Success(v float64) Outcome { return Outcome{Cost: &v} }

// Failure converts err into a user-safe outcome.
func Failure(err error, maxLen int) Outcome {
	return Outcome{Err: UserMessage(err, maxLen), Kind: KindOf(err)}
}

// UserMessage returns the first line of err, cut to maxLen characters.
// maxLen <= 0 means DefaultErrorMaxLen.
func UserMessage(err error, maxLen int) string {
	if err == nil {
		return ""
	}
	if maxLen <= 0 {
		maxLen = DefaultErrorMaxLen
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimRight(msg, "\r")
	if utf8.RuneCountInString(msg) > maxLen {
		r := []rune(msg)
		msg = string(r[:maxLen])
	}
	if msg == "" {
		var ie *Error
		if errors.As(err, &ie) {
			return string(ie.Kind)
		}
		return "error"
	}
	return msg
}
