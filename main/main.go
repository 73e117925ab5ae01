// Command smtpx enumerates users on an SMTP server via VRFY, EXPN, or
// RCPT TO probes.
//
// Single user check:
//
//	smtpx -t smtp.example.com -u alice -M VRFY
//
// Bulk user list with RCPT probing:
//
//	smtpx -t smtp.example.com -U userlist.txt -M RCPT -f attacker@example.com -D example.com -T 10
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	smtpx "github.com/cyb3rtr0nian/SMTPX"
	"github.com/cyb3rtr0nian/SMTPX/dns"
)

const (
	exitOK          = 0
	exitInterrupted = 1
	exitConfig      = 2
	exitUnreachable = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "path to a YAML run configuration file")
		target     = flag.String("t", "", "target SMTP server (required)")
		userList   = flag.String("U", "", "path to a file of usernames, one per line")
		user       = flag.String("u", "", "single username to test")
		method     = flag.String("M", "", "enumeration method: VRFY, EXPN, or RCPT (default VRFY)")
		fromAddr   = flag.String("f", "", "MAIL FROM address, used in RCPT mode (default user@example.com)")
		domain     = flag.String("D", "", "domain to append to usernames")
		port       = flag.Int("p", 0, "SMTP port (default 25)")
		workers    = flag.Int("T", 0, "number of concurrent workers (default 5)")
		wait       = flag.Int("w", 0, "per-operation timeout in seconds (default 10)")
		retries    = flag.Int("r", -1, "extra attempts per candidate on transient failures (default 2)")
		useMX      = flag.Bool("m", false, "treat the target as a mail domain and probe its best MX host")
		output     = flag.String("o", "", "write the run report to a file (.json or .msgpack)")
		verbose    = flag.Bool("v", false, "verbose output (every result, not just valid users)")
		debug      = flag.Bool("d", false, "debug output (every attempt and raw reply)")
	)
	flag.Parse()

	cfg, err := smtpx.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["t"] {
		cfg.Target = *target
	}
	if set["M"] {
		m, err := smtpx.ParseMethod(*method)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitConfig
		}
		cfg.Method = m
	}
	if set["f"] {
		cfg.FromAddr = *fromAddr
	}
	if set["D"] {
		cfg.Domain = *domain
	}
	if set["p"] {
		cfg.Port = *port
	}
	if set["T"] {
		cfg.Workers = *workers
	}
	if set["w"] {
		cfg.Timeout = time.Duration(*wait) * time.Second
	}
	if set["r"] && *retries >= 0 {
		cfg.MaxRetries = *retries
	}

	if *user == "" && *userList == "" {
		fmt.Fprintln(os.Stderr, "Error: either -U or -u must be specified")
		flag.Usage()
		return exitConfig
	}
	if *user != "" && *userList != "" {
		fmt.Fprintln(os.Stderr, "Error: cannot specify both -U and -u")
		return exitConfig
	}

	var users []string
	if *user != "" {
		users = []string{*user}
	} else {
		users, err = smtpx.LoadUserList(*userList)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitConfig
		}
		if len(users) == 0 {
			fmt.Fprintf(os.Stderr, "Error: user list %s contains no usernames\n", *userList)
			return exitConfig
		}
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *useMX {
		resolver := dns.NewResolver(dns.Config{Timeout: cfg.Timeout})
		host, err := dns.BestMX(ctx, resolver, cfg.Target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot resolve a mail exchanger for %s: %v\n", cfg.Target, err)
			return exitUnreachable
		}
		if *verbose {
			fmt.Printf("Using MX host %s for %s\n", host, cfg.Target)
		}
		cfg.Target = host
	}

	engine, err := smtpx.NewEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}

	candidates, err := smtpx.MakeCandidates(users, cfg.Domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}

	if *verbose {
		fmt.Printf("Starting enumeration with method %s\n", cfg.Method)
		if cfg.Domain != "" {
			fmt.Printf("Using domain: %s\n", cfg.Domain)
		}
		fmt.Printf("Target: %s\n", cfg.Addr())
		fmt.Printf("Testing %d users with %d workers\n", len(candidates), cfg.Workers)
	}

	report, runErr := engine.Run(ctx, candidates, func(ev smtpx.Event) {
		switch ev.Kind {
		case smtpx.EventAttempt:
			if *debug {
				rec := ev.Attempt
				if rec.Reply != nil {
					fmt.Printf("[DEBUG] %s attempt %d: %d %s\n",
						rec.Candidate.Address, rec.Attempt, rec.Reply.Code, firstLine(rec.Reply.Message))
				} else {
					fmt.Printf("[DEBUG] %s attempt %d: %s\n",
						rec.Candidate.Address, rec.Attempt, rec.Failure)
				}
			}
		case smtpx.EventResult:
			res := ev.Result
			if res.Verdict == smtpx.VerdictValid {
				fmt.Printf("Found valid user: %s\n", res.Address)
			} else if *verbose {
				fmt.Printf("%s: %s (attempts: %d)\n", res.Address, res.Verdict, res.Attempts)
			}
		}
	})

	if runErr != nil && errors.Is(runErr, smtpx.ErrTargetUnreachable) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return exitUnreachable
	}

	if report != nil {
		printSummary(report)
		if *output != "" {
			if err := writeReport(report, *output); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Interrupted: enumeration incomplete")
		return exitInterrupted
	}
	return exitOK
}

func printSummary(report *smtpx.Report) {
	fmt.Printf("\nEnumeration complete (time taken: %.2f seconds)\n", report.Elapsed.Seconds())
	fmt.Printf("Probed %d of %d users: %d valid, %d invalid, %d errors\n",
		len(report.Results), report.Total, report.Valid, report.Invalid, report.Errors)
	if report.Errors > 0 {
		fmt.Printf("%d users could not be determined after retries\n", report.Errors)
	}
	if len(report.ValidUsers) > 0 {
		fmt.Printf("Valid users found: %s\n", strings.Join(report.ValidUsers, ", "))
	} else {
		fmt.Println("No valid users found.")
	}
}

func writeReport(report *smtpx.Report, path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".msgpack") || strings.HasSuffix(path, ".msg") {
		data, err = report.ToMessagePack()
	} else {
		data, err = report.ToJSONIndent()
	}
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
