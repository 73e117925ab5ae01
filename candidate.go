package smtpx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/idna"
)

// Candidate is one username under test. Address is the string actually
// sent to the server: the raw username, or username@domain when a domain
// suffix is configured. Candidates are immutable once constructed.
type Candidate struct {
	Username string
	Address  string
}

// MakeCandidates builds the candidate set for a run. When domain is
// non-empty it is appended to every username; internationalized domains
// are normalized to their ASCII (punycode) form. Duplicate usernames are
// collapsed, preserving first-seen order.
func MakeCandidates(usernames []string, domain string) ([]Candidate, error) {
	if domain != "" {
		ascii, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return nil, fmt.Errorf("smtpx: invalid domain %q: %w", domain, err)
		}
		domain = ascii
	}

	seen := make(map[string]struct{}, len(usernames))
	candidates := make([]Candidate, 0, len(usernames))
	for _, user := range usernames {
		if _, ok := seen[user]; ok {
			continue
		}
		seen[user] = struct{}{}

		addr := user
		if domain != "" {
			addr = user + "@" + domain
		}
		candidates = append(candidates, Candidate{Username: user, Address: addr})
	}
	return candidates, nil
}

// ReadUserList reads newline-delimited usernames. Surrounding whitespace
// is trimmed and blank lines are skipped; deduplication happens later in
// MakeCandidates.
func ReadUserList(r io.Reader) ([]string, error) {
	var users []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		users = append(users, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("smtpx: reading user list: %w", err)
	}
	return users, nil
}

// LoadUserList reads a username file from disk.
func LoadUserList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("smtpx: user list: %w", err)
	}
	defer f.Close()

	return ReadUserList(f)
}
