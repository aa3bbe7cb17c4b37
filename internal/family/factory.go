// Package family implements one resource family factory per provider. A
// factory manufactures a virtual machine, a network and a disk that all carry
// the factory's provider tag.
package family

import (
	"fmt"
	"time"

	"vmforge/internal/resource"
)

// Factory creates the compatible resource triple of a single provider. The
// interface is sealed: only the four provider factories of this package
// implement it.
type Factory interface {
	Provider() resource.Provider
	CreateVM(p Params) resource.VirtualMachine
	CreateNetwork(p Params) resource.Network
	CreateDisk(p Params) resource.Disk

	sealed()
}

// Option configures a factory
type Option func(*base)

// WithIDGenerator overrides the identifier generator
func WithIDGenerator(ids resource.IDGenerator) Option {
	return func(b *base) {
		if ids != nil {
			b.ids = ids
		}
	}
}

// WithClock overrides the time source used for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// base holds what every factory shares: an id source and a clock
type base struct {
	provider resource.Provider
	ids      resource.IDGenerator
	now      func() time.Time
}

func newBase(p resource.Provider, opts []Option) base {
	b := base{provider: p, ids: resource.UUIDGenerator{}, now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) Provider() resource.Provider { return b.provider }
func (b base) sealed()                     {}

func (b base) vmBase(p Params) resource.VMBase {
	return resource.VMBase{
		VMID:  b.ids.NewID(b.provider, resource.KindVM),
		State: resource.StatusActive,
		Compute: resource.Compute{
			VCPUs:              p.Int("vcpus"),
			MemoryGB:           p.Int("memoryGB"),
			MemoryOptimization: p.Bool("memoryOptimization"),
			DiskOptimization:   p.Bool("diskOptimization"),
			KeyPairName:        p.String("keyPairName"),
		},
	}
}

func (b base) networkBase(p Params) resource.NetworkBase {
	return resource.NetworkBase{
		NetworkID: b.ids.NewID(b.provider, resource.KindNetwork),
		Zone:      p.String("region"),
		Rules:     p.Strings("firewallRules"),
		Public:    p.Bool("publicIP"),
		CreatedAt: b.now().UTC(),
	}
}

func (b base) diskBase(p Params) resource.DiskBase {
	return resource.DiskBase{
		DiskID:    b.ids.NewID(b.provider, resource.KindDisk),
		Capacity:  p.Int("sizeGB"),
		Zone:      p.String("region"),
		IOPSLimit: p.IntPtr("iops"),
		CreatedAt: b.now().UTC(),
	}
}

// New returns the factory for the given provider
func New(p resource.Provider, opts ...Option) (Factory, error) {
	switch p {
	case resource.ProviderAWS:
		return NewAWSFactory(opts...), nil
	case resource.ProviderAzure:
		return NewAzureFactory(opts...), nil
	case resource.ProviderGCP:
		return NewGCPFactory(opts...), nil
	case resource.ProviderOnPremise:
		return NewOnPremiseFactory(opts...), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", resource.ErrUnsupportedProvider, p)
	}
}
