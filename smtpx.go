// SMTPX is a concurrent SMTP user enumeration engine.
//
// It probes a target SMTP server with VRFY, EXPN, or RCPT TO commands to
// determine which usernames exist, classifying each server reply into a
// verdict and retrying transient failures on fresh connections.
//
// # Engine
//
// Build a run configuration, construct an engine, and run it over a set of
// candidates:
//
//	cfg := smtpx.DefaultConfig()
//	cfg.Target = "mail.example.com"
//	cfg.Method = smtpx.MethodVRFY
//
//	engine, err := smtpx.NewEngine(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	candidates, err := smtpx.MakeCandidates(users, cfg.Domain)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := engine.Run(ctx, candidates, func(ev smtpx.Event) {
//	    if ev.Kind == smtpx.EventResult && ev.Result.Verdict == smtpx.VerdictValid {
//	        fmt.Println(ev.Result.Address)
//	    }
//	})
//
// The engine emits structured events (per-attempt, per-result, end-of-run
// summary) through the handler; it never formats or colorizes output
// itself. Events are delivered sequentially from a single goroutine, so
// handlers need no locking.
//
// # Serialization
//
// Reports serialize to JSON and MessagePack:
//
//	jsonData, err := report.ToJSON()
//	msgpackData, err := report.ToMessagePack()
//
// # Target discovery
//
// The dns subpackage resolves MX records when the target is a mail domain
// rather than a host:
//
//	host, err := dns.BestMX(ctx, resolver, "example.com")
package smtpx
