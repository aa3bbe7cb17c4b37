// Package resource defines the provider-tagged resource variants (virtual
// machines, networks and disks), the bundle that groups them and their
// canonical record form.
package resource

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedProvider is returned for any provider tag outside the four known variants.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// Provider identifies the infrastructure provider a resource belongs to
type Provider string

const (
	ProviderAWS       Provider = "aws"
	ProviderAzure     Provider = "azure"
	ProviderGCP       Provider = "gcp"
	ProviderOnPremise Provider = "onpremise"
)

// Providers returns every supported provider in a stable order
func Providers() []Provider {
	return []Provider{ProviderAWS, ProviderAzure, ProviderGCP, ProviderOnPremise}
}

// ParseProvider normalizes a provider tag. Matching is case-insensitive.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedProvider, s)
	}
	return p, nil
}

// Valid reports whether p is one of the supported providers
func (p Provider) Valid() bool {
	switch p {
	case ProviderAWS, ProviderAzure, ProviderGCP, ProviderOnPremise:
		return true
	}
	return false
}

// idPrefix is the short tag used in generated identifiers
func (p Provider) idPrefix() string {
	if p == ProviderOnPremise {
		return "onprem"
	}
	return string(p)
}

// Kind is the resource type a record describes
type Kind string

const (
	KindVM      Kind = "vm"
	KindNetwork Kind = "net"
	KindDisk    Kind = "disk"
)
