package admin

import (
	"errors"
	"fmt"
)

// Status is an ISO 7816 status word returned to the dispatcher.
type Status uint16

// Status words.
const (
	StatusOK                         Status = 0x9000
	StatusWrongLength                Status = 0x6700
	StatusSecurityStatusNotSatisfied Status = 0x6982
	StatusWrongData                  Status = 0x6a80
	StatusWrongP1P2                  Status = 0x6b00
	StatusINSNotSupported            Status = 0x6d00
	StatusCLANotSupported            Status = 0x6e00
	StatusUnableToProcess            Status = 0x6f00
	StatusCheckingError              Status = 0x6f01
)

var statusText = map[Status]string{
	StatusOK:                         "ok",
	StatusWrongLength:                "wrong length",
	StatusSecurityStatusNotSatisfied: "security status not satisfied",
	StatusWrongData:                  "wrong data",
	StatusWrongP1P2:                  "wrong p1/p2",
	StatusINSNotSupported:            "ins not supported",
	StatusCLANotSupported:            "cla not supported",
	StatusUnableToProcess:            "unable to process",
	StatusCheckingError:              "checking error",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return fmt.Sprintf("%04X %s", uint16(s), text)
	}
	return fmt.Sprintf("%04X", uint16(s))
}

func (s Status) Error() string {
	return "admin: " + s.String()
}

// StatusOf maps err onto a status word. Errors that carry no status map to
// StatusUnableToProcess.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusUnableToProcess
}
