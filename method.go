package smtpx

import (
	"fmt"
	"strings"
)

// ProbeMethod selects which SMTP command is used to test a candidate.
// It is fixed for the whole run.
type ProbeMethod int

const (
	// MethodVRFY issues a VRFY command per candidate.
	MethodVRFY ProbeMethod = iota

	// MethodEXPN issues an EXPN command per candidate.
	MethodEXPN

	// MethodRCPT issues MAIL FROM followed by RCPT TO per candidate.
	MethodRCPT
)

func (m ProbeMethod) String() string {
	switch m {
	case MethodVRFY:
		return "VRFY"
	case MethodEXPN:
		return "EXPN"
	case MethodRCPT:
		return "RCPT"
	default:
		return fmt.Sprintf("ProbeMethod(%d)", int(m))
	}
}

// ParseMethod parses a method name, case-insensitively.
func ParseMethod(s string) (ProbeMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VRFY":
		return MethodVRFY, nil
	case "EXPN":
		return MethodEXPN, nil
	case "RCPT":
		return MethodRCPT, nil
	default:
		return 0, fmt.Errorf("smtpx: unknown probe method %q", s)
	}
}
