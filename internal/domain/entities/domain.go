package entities

import (
	"strings"
	"time"
)

// ParseDomain normalizes a domain name to its canonical upper-case form.
func ParseDomain(s string) Domain {
	return Domain(strings.ToUpper(strings.TrimSpace(s)))
}

// DomainWeights maps a domain to its share of the final score.
type DomainWeights map[Domain]float64

// NewDomainWeights builds weights from a name → weight map, normalizing domain names.
func NewDomainWeights(m map[string]float64) DomainWeights {
	w := make(DomainWeights, len(m))
	for k, v := range m {
		w[ParseDomain(k)] = v
	}
	return w
}

// Certification describes an exam the bot can run practice sessions for.
type Certification struct {
	ID           string
	Name         string
	Weights      DomainWeights
	Duration     time.Duration // exam duration, 0 for untimed practice
	Limit        int           // number of questions in an exam
	PassingScore int
}
