package smtpx

import (
	"fmt"
	"strings"
)

// Verdict is the engine's classification of a candidate's existence.
type Verdict int

const (
	// VerdictValid means the server confirmed or accepted the address.
	VerdictValid Verdict = iota

	// VerdictInvalid means the server denied the address exists.
	VerdictInvalid

	// VerdictAmbiguous means the reply was transient or inconclusive;
	// the attempt is eligible for retry.
	VerdictAmbiguous

	// VerdictError means no determination could be made. It becomes
	// terminal only after retries are exhausted.
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	case VerdictAmbiguous:
		return "ambiguous"
	case VerdictError:
		return "error"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "valid":
		*v = VerdictValid
	case "invalid":
		*v = VerdictInvalid
	case "ambiguous":
		*v = VerdictAmbiguous
	case "error":
		*v = VerdictError
	default:
		return fmt.Errorf("smtpx: unknown verdict %q", text)
	}
	return nil
}

// Terminal reports whether the verdict finalizes a candidate without
// retry. VerdictError is terminal only once retries exhaust, which the
// scheduler decides.
func (v Verdict) Terminal() bool {
	return v == VerdictValid || v == VerdictInvalid
}

// codeRule maps an inclusive reply-code range to a verdict.
type codeRule struct {
	lo, hi  int
	verdict Verdict
}

// verdictRules is the per-method classification table. Reply code is the
// primary signal; first matching range wins. Server dialects vary, so
// new quirks are added here rather than in control flow.
//
// 252 deserves a note: "cannot VRFY user, but will accept message" still
// means the server would queue mail for the address, so it counts as
// valid for every method despite its hedged wording.
var verdictRules = map[ProbeMethod][]codeRule{
	MethodVRFY: {
		{250, 252, VerdictValid},
		{421, 421, VerdictAmbiguous},
		{450, 452, VerdictAmbiguous},
		{550, 551, VerdictInvalid},
		{553, 553, VerdictInvalid},
	},
	MethodEXPN: {
		{250, 252, VerdictValid},
		{421, 421, VerdictAmbiguous},
		{450, 452, VerdictAmbiguous},
		{550, 551, VerdictInvalid},
		{553, 553, VerdictInvalid},
	},
	MethodRCPT: {
		{250, 252, VerdictValid},
		{421, 421, VerdictAmbiguous},
		{450, 452, VerdictAmbiguous},
		{550, 551, VerdictInvalid},
		{553, 553, VerdictInvalid},
	},
}

// transientMarkers are reply-text fragments that mark greylisting or
// rate limiting regardless of the reply code. Heuristic and
// server-dependent; matched case-insensitively on error replies.
var transientMarkers = []string{
	"greylist",
	"grey list",
	"graylist",
	"try again",
	"try later",
	"rate limit",
	"too many",
	"throttl",
	"deferred",
}

// invalidMarkers demote an accepting reply whose text still denies the
// user. Servers that answer 250 to every VRFY often put the real answer
// in the text.
var invalidMarkers = []string{
	"cannot",
	"invalid",
	"not found",
	"unknown",
	"unable",
	"disabled",
	"denied",
	"reject",
	"fail",
	"error",
}

// Classify maps one attempt's outcome to a verdict. It is pure: no side
// effects, no I/O, and deterministic for a given input.
//
// Exactly one of reply and perr must be non-nil.
func Classify(method ProbeMethod, reply *Reply, perr *ProbeError) Verdict {
	if perr != nil {
		switch perr.Failure {
		case FailureTimeout, FailureReset:
			return VerdictAmbiguous
		default:
			return VerdictError
		}
	}

	text := strings.ToLower(reply.Message)

	// Greylisting phrasing overrides the code, but only on error
	// replies; a 2xx cannot be a deferral.
	if reply.Code >= 400 && containsAny(text, transientMarkers) {
		return VerdictAmbiguous
	}

	for _, rule := range verdictRules[method] {
		if reply.Code >= rule.lo && reply.Code <= rule.hi {
			// 252's standard wording ("cannot VRFY...") would trip the
			// invalid markers; it is exempt from demotion.
			if rule.verdict == VerdictValid && reply.Code != 252 && containsAny(text, invalidMarkers) {
				return VerdictInvalid
			}
			return rule.verdict
		}
	}

	// Unmodeled 2xx: trust it only when the text says so.
	if reply.IsSuccess() && strings.Contains(text, "ok") && !containsAny(text, invalidMarkers) {
		return VerdictValid
	}

	// Conservative default: treat unmodeled permanent errors and
	// unrecognized codes as non-existence.
	return VerdictInvalid
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
