package smtpx

//go:generate msgp -io=false

import (
	"encoding/json"
	"time"
)

// Result is the terminal outcome for one candidate. It is emitted
// exactly once and immutable thereafter.
type Result struct {
	Username string  `json:"username" msg:"username"`
	Address  string  `json:"address" msg:"address"`
	Verdict  Verdict `json:"verdict" msg:"verdict"`
	Attempts int     `json:"attempts" msg:"attempts"`

	// Code and Message hold the last server reply, or zero and the
	// failure description when no reply was received.
	Code    int    `json:"code,omitempty" msg:"code"`
	Message string `json:"message,omitempty" msg:"message"`
}

// Report is the end-of-run summary: per-verdict counters, elapsed time,
// and every finalized Result in completion order.
type Report struct {
	RunID      string        `json:"run_id" msg:"run_id"`
	Target     string        `json:"target" msg:"target"`
	Port       int           `json:"port" msg:"port"`
	Method     string        `json:"method" msg:"method"`
	Total      int           `json:"total" msg:"total"`
	Valid      int           `json:"valid" msg:"valid"`
	Invalid    int           `json:"invalid" msg:"invalid"`
	Errors     int           `json:"errors" msg:"errors"`
	Elapsed    time.Duration `json:"elapsed" msg:"elapsed"`
	ValidUsers []string      `json:"valid_users" msg:"valid_users"`
	Results    []Result      `json:"results" msg:"results"`
}

// ToJSON serializes the Report to JSON bytes.
func (r *Report) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ToJSONIndent serializes the Report to pretty-printed JSON bytes.
func (r *Report) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON deserializes a Report from JSON bytes.
func FromJSON(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ToMessagePack serializes the Report to MessagePack bytes.
func (r *Report) ToMessagePack() ([]byte, error) {
	return r.MarshalMsg(nil)
}

// FromMessagePack deserializes a Report from MessagePack bytes.
func FromMessagePack(data []byte) (*Report, error) {
	var r Report
	if _, err := r.UnmarshalMsg(data); err != nil {
		return nil, err
	}
	return &r, nil
}
