package builder

import (
	"vmforge/internal/family"
	"vmforge/internal/resource"
)

// NetworkOptions are caller overrides for the network of a constructed bundle
type NetworkOptions struct {
	Attributes    family.Params
	FirewallRules []string
	PublicIP      *bool
}

// DiskOptions are caller overrides for the disk of a constructed bundle
type DiskOptions struct {
	SizeGB     int
	Attributes family.Params
	IOPS       *int
}

// Options carries everything a caller may add to a policy-driven construction
type Options struct {
	KeyPairName string
	VM          family.Params
	Network     NetworkOptions
	Disk        DiskOptions
}

// OptionsFromParams reads options from a loosely typed request object of the
// form {keyPairName, vm:{...}, network:{..., firewallRules, publicIP},
// disk:{..., sizeGB, iops}}.
func OptionsFromParams(p family.Params) Options {
	network := p.Map("network")
	disk := p.Map("disk")

	opts := Options{
		KeyPairName: p.String("keyPairName"),
		VM:          p.Map("vm"),
		Network: NetworkOptions{
			Attributes: network,
			PublicIP:   network.BoolPtr("publicIP"),
		},
		Disk: DiskOptions{
			SizeGB:     disk.Int("sizeGB"),
			Attributes: disk,
		},
	}
	if network.Has("firewallRules") {
		opts.Network.FirewallRules = network.Strings("firewallRules")
		if opts.Network.FirewallRules == nil {
			opts.Network.FirewallRules = []string{}
		}
	}
	if iops := disk.Int("iops"); iops > 0 {
		opts.Disk.IOPS = &iops
	}
	return opts
}

// Director drives a Builder through the fixed construction sequence using the
// sizing and defaulting policy of the builder's provider.
type Director struct {
	builder *Builder
}

// NewDirector creates a Director bound to b
func NewDirector(b *Builder) *Director {
	return &Director{builder: b}
}

// SetBuilder rebinds the director
func (d *Director) SetBuilder(b *Builder) {
	d.builder = b
}

// Construct builds a bundle of the given category
func (d *Director) Construct(c Category, size Size, region string, opts Options) (*resource.Bundle, error) {
	shape, err := Lookup(d.builder.Provider(), c, size)
	if err != nil {
		return nil, err
	}
	return d.construct(c, shape, region, opts), nil
}

func (d *Director) ConstructStandardVM(size Size, region string, opts Options) *resource.Bundle {
	return d.mustConstruct(CategoryStandard, size, region, opts)
}

func (d *Director) ConstructMemoryOptimizedVM(size Size, region string, opts Options) *resource.Bundle {
	return d.mustConstruct(CategoryMemoryOptimized, size, region, opts)
}

func (d *Director) ConstructComputeOptimizedVM(size Size, region string, opts Options) *resource.Bundle {
	return d.mustConstruct(CategoryComputeOptimized, size, region, opts)
}

// mustConstruct is used with known categories only; the builder's provider is
// always one of the four from the sealed factory set, so Lookup cannot fail.
func (d *Director) mustConstruct(c Category, size Size, region string, opts Options) *resource.Bundle {
	bundle, err := d.Construct(c, size, region, opts)
	if err != nil {
		panic(err)
	}
	return bundle
}

func (d *Director) construct(c Category, shape Shape, region string, opts Options) *resource.Bundle {
	b := d.builder
	p := b.Provider()

	b.Reset().
		SetVMConfig(shape.InstanceType, shape.VCPUs, shape.MemoryGB, region).
		SetMemoryOptimization(c == CategoryMemoryOptimized).
		SetDiskOptimization(c == CategoryComputeOptimized)

	if opts.KeyPairName != "" {
		b.SetKeyPair(opts.KeyPairName)
	}
	b.MergeVMParams(opts.VM)

	b.SetNetworkConfig(region, NetworkDefaults(p, opts.Network.Attributes))
	if opts.Network.FirewallRules != nil {
		b.SetFirewallRules(opts.Network.FirewallRules)
	}
	if opts.Network.PublicIP != nil {
		b.SetPublicIP(*opts.Network.PublicIP)
	}

	size := opts.Disk.SizeGB
	if size <= 0 {
		size = DefaultDiskSize(c)
	}
	b.SetDiskConfig(size, region, DiskDefaults(p, opts.Disk.Attributes))
	if opts.Disk.IOPS != nil {
		b.SetIOPS(*opts.Disk.IOPS)
	}

	return b.Build()
}
