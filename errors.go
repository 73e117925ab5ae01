package smtpx

import "errors"

var (
	ErrNoCandidates       = errors.New("smtpx: no candidates to probe")
	ErrNoConnection       = errors.New("smtpx: no connection established")
	ErrUnexpectedResponse = errors.New("smtpx: unexpected server response")
	ErrMailFromRejected   = errors.New("smtpx: MAIL FROM rejected")
	ErrTargetUnreachable  = errors.New("smtpx: target unreachable")
	ErrEngineUsed         = errors.New("smtpx: engine already ran")
)
