package RFM75Model

import (
	"fmt"
	"strings"
)

// ErrorType is the kind of a failure. It is an error itself, so errors.Is(err, EInvalidPipeNumber) works.
type ErrorType string

func (t ErrorType) Error() string {
	return string(t)
}

const (
	EInvalidPipeNumber    ErrorType = "invalid pipe number"
	EInvalidPayloadWidth  ErrorType = "invalid payload width"
	ERegisterValueTooLong ErrorType = "register value too long"
	ETransport            ErrorType = "transport failure"
	ENotConnected         ErrorType = "chip not connected"
	EBitOutOfRange        ErrorType = "bit number out of register range"
	EInvalidAddressWidth  ErrorType = "invalid address width"
	EInvalidDataRate      ErrorType = "invalid data rate"
	EInvalidTxPower       ErrorType = "invalid tx power"
	EInvalidCEHold        ErrorType = "invalid CE hold time"
	EPayloadTooLong       ErrorType = "payload too long"
	EBadParameter         ErrorType = "bad parameter"
)

type Error struct {
	Type ErrorType
	// Op is the operation that failed
	Op     string
	Detail string
	// Err is the underlying transport error, if any
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Type))
	if "" != e.Detail {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if nil != e.Err {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if nil == e.Err {
		return []error{e.Type}
	}
	return []error{e.Type, e.Err}
}

func newError(t ErrorType, op string, detail string) error {
	return &Error{Type: t, Op: op, Detail: detail}
}

func transportError(op string, err error) error {
	return &Error{Type: ETransport, Op: op, Err: err}
}

// Dump formats bytes as space separated hex for logs
func Dump(b []byte) string {
	var ret string
	for i := range b {
		c := b[i]
		if 16 > c {
			ret += "0"
		}
		ret += fmt.Sprintf("%X ", c)
	}
	return strings.TrimSuffix(ret, " ")
}
