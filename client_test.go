package smtpx

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedServer is a minimal SMTP server for driver tests. It replies
// to each command verb from a fixed script.
type scriptedServer struct {
	t         *testing.T
	ln        net.Listener
	banner    string
	responses map[string]string
}

func startScriptedServer(t *testing.T, banner string, responses map[string]string) *scriptedServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	s := &scriptedServer{t: t, ln: ln, banner: banner, responses: responses}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *scriptedServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *scriptedServer) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	if s.banner != "" {
		conn.Write([]byte(s.banner + "\r\n"))
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.Fields(strings.TrimSpace(line))[0])
		if verb == "QUIT" {
			conn.Write([]byte("221 2.0.0 Bye\r\n"))
			return
		}
		reply, ok := s.responses[verb]
		if !ok {
			reply = "502 5.5.1 Command not implemented"
		}
		for _, l := range strings.Split(reply, "\n") {
			conn.Write([]byte(l + "\r\n"))
		}
	}
}

func (s *scriptedServer) config(t *testing.T) *RunConfig {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.ln.Addr().String())
	if err != nil {
		t.Fatalf("Failed to split server address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultConfig()
	cfg.Target = host
	cfg.Port = port
	cfg.Timeout = 5 * time.Second
	cfg.RetryDelay = 0
	return cfg
}

func TestSessionVRFY(t *testing.T) {
	server := startScriptedServer(t, "220 mail.test ESMTP", map[string]string{
		"EHLO": "250-mail.test\n250-PIPELINING\n250 SIZE 10240000",
		"VRFY": "250 2.1.0 alice <alice@mail.test>",
	})
	cfg := server.config(t)

	prober := &sessionProber{cfg: cfg}
	reply, perr := prober.Probe(context.Background(), Candidate{Username: "alice", Address: "alice"})
	if perr != nil {
		t.Fatalf("Probe failed: %v", perr)
	}
	if reply.Code != 250 {
		t.Errorf("Got code %d, want 250", reply.Code)
	}
	if !strings.Contains(reply.Message, "alice") {
		t.Errorf("Reply message %q missing address", reply.Message)
	}
}

func TestSessionEXPN(t *testing.T) {
	server := startScriptedServer(t, "220 mail.test ESMTP", map[string]string{
		"EHLO": "250 mail.test",
		"EXPN": "550 5.1.1 EXPN not available",
	})
	cfg := server.config(t)
	cfg.Method = MethodEXPN

	prober := &sessionProber{cfg: cfg}
	reply, perr := prober.Probe(context.Background(), Candidate{Username: "staff", Address: "staff"})
	if perr != nil {
		t.Fatalf("Probe failed: %v", perr)
	}
	if reply.Code != 550 {
		t.Errorf("Got code %d, want 550", reply.Code)
	}
}

func TestSessionHELOFallback(t *testing.T) {
	server := startScriptedServer(t, "220 mail.test", map[string]string{
		"EHLO": "502 5.5.1 EHLO not supported",
		"HELO": "250 mail.test",
		"VRFY": "252 Cannot VRFY user, but will accept message",
	})
	cfg := server.config(t)

	prober := &sessionProber{cfg: cfg}
	reply, perr := prober.Probe(context.Background(), Candidate{Username: "bob", Address: "bob"})
	if perr != nil {
		t.Fatalf("Probe failed: %v", perr)
	}
	if reply.Code != 252 {
		t.Errorf("Got code %d, want 252", reply.Code)
	}
}

func TestSessionRCPT(t *testing.T) {
	server := startScriptedServer(t, "220 mail.test ESMTP", map[string]string{
		"EHLO": "250 mail.test",
		"MAIL": "250 2.1.0 Ok",
		"RCPT": "550 5.1.1 Recipient address rejected: User unknown",
	})
	cfg := server.config(t)
	cfg.Method = MethodRCPT

	prober := &sessionProber{cfg: cfg}
	reply, perr := prober.Probe(context.Background(), Candidate{Username: "carol", Address: "carol@mail.test"})
	if perr != nil {
		t.Fatalf("Probe failed: %v", perr)
	}
	if reply.Code != 550 {
		t.Errorf("Got code %d, want 550", reply.Code)
	}
}

// A rejected MAIL FROM means the RCPT probe cannot be evaluated: the
// attempt is a connection-level failure, never a candidate verdict.
func TestSessionRCPTMailFromRejected(t *testing.T) {
	server := startScriptedServer(t, "220 mail.test ESMTP", map[string]string{
		"EHLO": "250 mail.test",
		"MAIL": "553 5.1.8 Sender address rejected",
	})
	cfg := server.config(t)
	cfg.Method = MethodRCPT

	prober := &sessionProber{cfg: cfg}
	reply, perr := prober.Probe(context.Background(), Candidate{Username: "dave", Address: "dave@mail.test"})
	if reply != nil {
		t.Fatalf("Expected no reply, got %d", reply.Code)
	}
	if perr == nil {
		t.Fatal("Expected a probe error")
	}
	if perr.Failure != FailureProtocol {
		t.Errorf("Got failure %s, want protocol-violation", perr.Failure)
	}
	if !errors.Is(perr, ErrMailFromRejected) {
		t.Errorf("Expected ErrMailFromRejected, got %v", perr.Err)
	}
	if verdict := Classify(MethodRCPT, reply, perr); verdict == VerdictInvalid {
		t.Error("MAIL FROM rejection must never classify the candidate as invalid")
	}
}

func TestSessionTimeoutOnSilentServer(t *testing.T) {
	// Accepts connections but never sends a banner.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	cfg := DefaultConfig()
	cfg.Target = host
	cfg.Port = port
	cfg.Timeout = 100 * time.Millisecond

	prober := &sessionProber{cfg: cfg}
	start := time.Now()
	_, perr := prober.Probe(context.Background(), Candidate{Username: "eve", Address: "eve"})
	if perr == nil {
		t.Fatal("Expected a probe error from the silent server")
	}
	if perr.Failure != FailureTimeout {
		t.Errorf("Got failure %s, want timeout", perr.Failure)
	}
	if perr.Greeted {
		t.Error("Greeted should be false when the banner never arrived")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Timeout took %v, deadline not enforced", elapsed)
	}
}

func TestSessionConnectionRefused(t *testing.T) {
	// Grab a port and release it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	cfg := DefaultConfig()
	cfg.Target = host
	cfg.Port = port
	cfg.Timeout = time.Second

	prober := &sessionProber{cfg: cfg}
	_, perr := prober.Probe(context.Background(), Candidate{Username: "frank", Address: "frank"})
	if perr == nil {
		t.Fatal("Expected a probe error")
	}
	if perr.Failure != FailureRefused {
		t.Errorf("Got failure %s, want refused", perr.Failure)
	}
	if perr.Greeted {
		t.Error("Greeted should be false for a refused connection")
	}
}

func TestSessionGreetingRejected(t *testing.T) {
	server := startScriptedServer(t, "554 No SMTP service here", nil)
	cfg := server.config(t)

	prober := &sessionProber{cfg: cfg}
	_, perr := prober.Probe(context.Background(), Candidate{Username: "gina", Address: "gina"})
	if perr == nil {
		t.Fatal("Expected a probe error")
	}
	if perr.Failure != FailureProtocol {
		t.Errorf("Got failure %s, want protocol-violation", perr.Failure)
	}
}

// Retries open fresh connections: running the engine against a server
// that defers twice then accepts must show three separate sessions.
func TestEngineRetriesUseFreshConnections(t *testing.T) {
	var mu sync.Mutex
	vrfyCount := 0

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	sessions := 0
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			sessions++
			mu.Unlock()
			go func(conn net.Conn) {
				defer conn.Close()
				conn.SetDeadline(time.Now().Add(10 * time.Second))
				conn.Write([]byte("220 mail.test ESMTP\r\n"))
				reader := bufio.NewReader(conn)
				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						return
					}
					verb := strings.ToUpper(strings.Fields(strings.TrimSpace(line))[0])
					switch verb {
					case "EHLO":
						conn.Write([]byte("250 mail.test\r\n"))
					case "VRFY":
						mu.Lock()
						vrfyCount++
						n := vrfyCount
						mu.Unlock()
						if n < 3 {
							conn.Write([]byte("450 4.2.1 Greylisted, try again later\r\n"))
						} else {
							conn.Write([]byte("250 2.1.0 alice <alice@mail.test>\r\n"))
						}
					case "QUIT":
						conn.Write([]byte("221 Bye\r\n"))
						return
					default:
						conn.Write([]byte("502 Command not implemented\r\n"))
					}
				}
			}(conn)
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	cfg := DefaultConfig()
	cfg.Target = host
	cfg.Port = port
	cfg.Timeout = 5 * time.Second
	cfg.RetryDelay = 0
	cfg.MaxRetries = 2

	engine, err := NewEngine(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	candidates, _ := MakeCandidates([]string{"alice"}, "")
	report, err := engine.Run(context.Background(), candidates, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	res := report.Results[0]
	if res.Verdict != VerdictValid {
		t.Errorf("Got verdict %s, want valid", res.Verdict)
	}
	if res.Attempts != 3 {
		t.Errorf("Got %d attempts, want 3", res.Attempts)
	}
	mu.Lock()
	defer mu.Unlock()
	if sessions != 3 {
		t.Errorf("Got %d TCP sessions, want 3 (one per attempt)", sessions)
	}
}

func TestReadReplyMultiline(t *testing.T) {
	server := startScriptedServer(t, "220-mail.test welcomes you\n220 ESMTP ready", map[string]string{
		"EHLO": "250-mail.test\n250-PIPELINING\n250 8BITMIME",
		"VRFY": "250 ok",
	})
	cfg := server.config(t)

	client := NewClient(cfg)
	if err := client.Dial(context.Background()); err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	if err := client.Hello(); err != nil {
		t.Fatalf("Hello failed: %v", err)
	}
	reply, err := client.Verify("alice")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if reply.Code != 250 {
		t.Errorf("Got code %d, want 250", reply.Code)
	}
}
