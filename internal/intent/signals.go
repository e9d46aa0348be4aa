package intent

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SignalSet maps a company domain to its observed intent signals.
type SignalSet map[string][]Signal

// For returns the signals recorded for a domain, nil if none.
func (s SignalSet) For(domain string) []Signal {
	if s == nil || domain == "" {
		return nil
	}
	return s[strings.ToLower(domain)]
}

// LoadSignals reads a YAML file mapping company domains to intent signals:
//
//	acme.com:
//	  - type: job_posting
//	    source: indeed
//	    score: 0.8
func LoadSignals(path string) (SignalSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "intent: read signals file")
	}

	var raw map[string][]Signal
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "intent: parse signals file")
	}

	set := make(SignalSet, len(raw))
	for domain, signals := range raw {
		set[strings.ToLower(strings.TrimSpace(domain))] = signals
	}
	return set, nil
}
