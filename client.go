package smtpx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Failure tags a connection-level failure of a probe attempt.
type Failure int

const (
	// FailureNone means the attempt produced a server reply.
	FailureNone Failure = iota

	// FailureTimeout means a connect, read, or write exceeded the
	// configured deadline.
	FailureTimeout

	// FailureRefused means the connection was refused.
	FailureRefused

	// FailureReset means the connection was reset or closed mid-exchange.
	FailureReset

	// FailureProtocol means the server spoke something the session could
	// not act on: a malformed reply, a rejected greeting or HELO, or a
	// rejected MAIL FROM before RCPT.
	FailureProtocol
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureRefused:
		return "refused"
	case FailureReset:
		return "reset"
	case FailureProtocol:
		return "protocol-violation"
	default:
		return fmt.Sprintf("Failure(%d)", int(f))
	}
}

// ProbeError is the connection-level failure of a single probe attempt.
// It is a terminal outcome for the attempt, not the candidate: the
// scheduler decides whether to retry.
type ProbeError struct {
	Failure Failure

	// Greeted reports whether the server banner was read before the
	// failure. A run whose very first attempt fails ungreeted is treated
	// as target-unreachable.
	Greeted bool

	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe failed (%s): %v", e.Failure, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Reply is a parsed SMTP server reply: the numeric code and the text of
// all reply lines.
type Reply struct {
	Code    int
	Message string
	Lines   []string
}

// IsSuccess returns true if the reply indicates success (2xx).
func (r *Reply) IsSuccess() bool {
	return r.Code >= 200 && r.Code < 300
}

// IsTransient returns true if the reply indicates a transient error (4xx).
func (r *Reply) IsTransient() bool {
	return r.Code >= 400 && r.Code < 500
}

// Client drives one short-lived SMTP session against the target. A probe
// attempt owns exactly one Client; connections are never reused across
// attempts. Every blocking operation is individually bounded by the
// configured timeout.
type Client struct {
	cfg     *RunConfig
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	greeted bool
}

// NewClient creates a client for a single probe session.
func NewClient(cfg *RunConfig) *Client {
	return &Client{cfg: cfg}
}

// Dial connects to the target and reads the server greeting.
func (c *Client) Dial(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: c.cfg.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr())
	if err != nil {
		return c.fail(err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.writer = bufio.NewWriter(conn)

	reply, err := c.readReply()
	if err != nil {
		c.Close()
		return c.fail(err)
	}
	if !reply.IsSuccess() {
		c.Close()
		return &ProbeError{
			Failure: FailureProtocol,
			Err:     fmt.Errorf("greeting rejected: %d %s", reply.Code, reply.Message),
		}
	}

	c.greeted = true
	return nil
}

// Hello identifies the session. EHLO is tried first, with a HELO
// fallback for servers that reject it.
func (c *Client) Hello() error {
	if c.conn == nil {
		return ErrNoConnection
	}

	reply, err := c.command("EHLO %s", c.cfg.LocalName)
	if err != nil {
		return c.fail(err)
	}
	if reply.IsSuccess() {
		return nil
	}

	reply, err = c.command("HELO %s", c.cfg.LocalName)
	if err != nil {
		return c.fail(err)
	}
	if !reply.IsSuccess() {
		return &ProbeError{
			Failure: FailureProtocol,
			Greeted: true,
			Err:     fmt.Errorf("HELO rejected: %d %s", reply.Code, reply.Message),
		}
	}
	return nil
}

// Verify sends VRFY for the given address.
func (c *Client) Verify(addr string) (*Reply, error) {
	return c.probeCommand("VRFY %s", addr)
}

// Expand sends EXPN for the given address.
func (c *Client) Expand(addr string) (*Reply, error) {
	return c.probeCommand("EXPN %s", addr)
}

// MailFrom opens a mail transaction. It must precede RcptTo. A rejected
// MAIL FROM is reported as a connection-level failure: the RCPT probe
// cannot be evaluated without it.
func (c *Client) MailFrom(from string) error {
	if c.conn == nil {
		return ErrNoConnection
	}

	reply, err := c.command("MAIL FROM:<%s>", from)
	if err != nil {
		return c.fail(err)
	}
	if !reply.IsSuccess() {
		return &ProbeError{
			Failure: FailureProtocol,
			Greeted: true,
			Err:     fmt.Errorf("%w: %d %s", ErrMailFromRejected, reply.Code, reply.Message),
		}
	}
	return nil
}

// RcptTo sends RCPT TO for the given address.
func (c *Client) RcptTo(addr string) (*Reply, error) {
	return c.probeCommand("RCPT TO:<%s>", addr)
}

func (c *Client) probeCommand(format string, args ...any) (*Reply, error) {
	if c.conn == nil {
		return nil, ErrNoConnection
	}

	reply, err := c.command(format, args...)
	if err != nil {
		return nil, c.fail(err)
	}
	return reply, nil
}

// Quit tears the session down: QUIT is sent best-effort, then the
// connection is closed on every path.
func (c *Client) Quit() {
	if c.conn == nil {
		return
	}
	if err := c.writeCommand("QUIT"); err == nil {
		c.readReply()
	}
	c.Close()
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	c.writer = nil
	return err
}

// command sends one command and reads the reply.
func (c *Client) command(format string, args ...any) (*Reply, error) {
	if err := c.writeCommand(format, args...); err != nil {
		return nil, err
	}
	return c.readReply()
}

func (c *Client) writeCommand(format string, args ...any) error {
	cmd := fmt.Sprintf(format, args...)

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.Timeout)); err != nil {
		return err
	}
	if _, err := c.writer.WriteString(cmd + "\r\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

// readReply reads and parses a server reply, following multi-line
// continuations (dash after the code) until the final line.
func (c *Client) readReply() (*Reply, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.Timeout)); err != nil {
		return nil, err
	}

	var lines []string
	var code int

	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")

		if len(line) < 3 {
			return nil, fmt.Errorf("%w: line too short: %q", ErrUnexpectedResponse, line)
		}

		lineCode, err := strconv.Atoi(line[:3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid code: %q", ErrUnexpectedResponse, line)
		}
		if code == 0 {
			code = lineCode
		} else if lineCode != code {
			return nil, fmt.Errorf("%w: inconsistent codes", ErrUnexpectedResponse)
		}

		message := ""
		if len(line) > 4 {
			message = line[4:]
		}
		lines = append(lines, message)

		// Space after the code marks the final line.
		if len(line) == 3 || line[3] == ' ' {
			break
		}
	}

	return &Reply{
		Code:    code,
		Message: strings.Join(lines, "\n"),
		Lines:   lines,
	}, nil
}

// fail wraps an I/O error into a tagged ProbeError.
func (c *Client) fail(err error) *ProbeError {
	return &ProbeError{
		Failure: classifyIOError(err),
		Greeted: c.greeted,
		Err:     err,
	}
}

// classifyIOError maps a network error to a failure tag.
func classifyIOError(err error) Failure {
	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureRefused
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed):
		return FailureReset
	case errors.Is(err, ErrUnexpectedResponse):
		return FailureProtocol
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureReset
	}
}

// sessionProber runs real probe attempts, one fresh session per attempt.
type sessionProber struct {
	cfg *RunConfig
}

// Probe performs the full exchange for one attempt: connect, greeting,
// EHLO/HELO, optional MAIL FROM, then the method-specific probe command.
// Exactly one of the return values is non-nil. The connection is torn
// down before returning on every path.
func (p *sessionProber) Probe(ctx context.Context, cand Candidate) (*Reply, *ProbeError) {
	client := NewClient(p.cfg)

	if err := client.Dial(ctx); err != nil {
		return nil, asProbeError(err)
	}
	defer client.Quit()

	if err := client.Hello(); err != nil {
		return nil, asProbeError(err)
	}

	var reply *Reply
	var err error
	switch p.cfg.Method {
	case MethodEXPN:
		reply, err = client.Expand(cand.Address)
	case MethodRCPT:
		if err := client.MailFrom(p.cfg.FromAddr); err != nil {
			return nil, asProbeError(err)
		}
		reply, err = client.RcptTo(cand.Address)
	default:
		reply, err = client.Verify(cand.Address)
	}
	if err != nil {
		return nil, asProbeError(err)
	}
	return reply, nil
}

func asProbeError(err error) *ProbeError {
	var perr *ProbeError
	if errors.As(err, &perr) {
		return perr
	}
	return &ProbeError{Failure: classifyIOError(err), Err: err}
}
