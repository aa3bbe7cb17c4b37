// Package builder assembles resource bundles step by step and encodes the
// sizing and defaulting policy that drives the assembly.
package builder

import (
	"vmforge/internal/family"
	"vmforge/internal/resource"
)

// Builder accumulates the configuration of one bundle and delegates creation
// to its bound factory. A Builder is not safe for concurrent use; create one
// per provisioning request.
type Builder struct {
	factory family.Factory

	vm      VMConfig
	network NetworkConfig
	disk    DiskConfig
}

// New creates a Builder bound to f. The zero Builder has no factory and is
// not usable; passing a nil factory is a programming error and panics here
// rather than on first use.
func New(f family.Factory) *Builder {
	if f == nil {
		panic("builder: nil factory")
	}
	return &Builder{factory: f}
}

// ForProvider creates a Builder bound to the factory family of p
func ForProvider(p resource.Provider, opts ...family.Option) (*Builder, error) {
	f, err := family.New(p, opts...)
	if err != nil {
		return nil, err
	}
	return New(f), nil
}

// Provider returns the provider of the bound factory
func (b *Builder) Provider() resource.Provider {
	return b.factory.Provider()
}

// Reset clears all accumulated configuration
func (b *Builder) Reset() *Builder {
	b.vm = VMConfig{}
	b.network = NetworkConfig{}
	b.disk = DiskConfig{}
	return b
}

// SetVMConfig replaces the core VM configuration. Optimization flags, key pair
// and extra fields are cleared as well.
func (b *Builder) SetVMConfig(instanceType string, vcpus, memoryGB int, region string) *Builder {
	b.vm = VMConfig{
		InstanceType: instanceType,
		VCPUs:        vcpus,
		MemoryGB:     memoryGB,
		Region:       region,
	}
	return b
}

func (b *Builder) SetMemoryOptimization(enabled bool) *Builder {
	b.vm.MemoryOptimization = enabled
	return b
}

func (b *Builder) SetDiskOptimization(enabled bool) *Builder {
	b.vm.DiskOptimization = enabled
	return b
}

func (b *Builder) SetKeyPair(name string) *Builder {
	b.vm.KeyPairName = name
	return b
}

// MergeVMParams merges provider-specific VM fields; later calls win per field
func (b *Builder) MergeVMParams(p family.Params) *Builder {
	b.vm.Extra = family.Merge(b.vm.Extra, p)
	return b
}

// SetNetworkConfig replaces the network configuration
func (b *Builder) SetNetworkConfig(region string, attrs family.Params) *Builder {
	b.network = NetworkConfig{Region: region, Attributes: attrs.Clone()}
	return b
}

func (b *Builder) SetFirewallRules(rules []string) *Builder {
	b.network.FirewallRules = append([]string(nil), rules...)
	return b
}

func (b *Builder) SetPublicIP(enabled bool) *Builder {
	b.network.PublicIP = enabled
	return b
}

// SetDiskConfig replaces the disk configuration
func (b *Builder) SetDiskConfig(sizeGB int, region string, attrs family.Params) *Builder {
	b.disk = DiskConfig{SizeGB: sizeGB, Region: region, Attributes: attrs.Clone()}
	return b
}

func (b *Builder) SetIOPS(iops int) *Builder {
	b.disk.IOPS = &iops
	return b
}

// VMConfig returns the accumulated VM configuration
func (b *Builder) VMConfig() VMConfig { return b.vm }

// NetworkConfig returns the accumulated network configuration
func (b *Builder) NetworkConfig() NetworkConfig { return b.network }

// DiskConfig returns the accumulated disk configuration
func (b *Builder) DiskConfig() DiskConfig { return b.disk }

// Build creates the bundle from the accumulated configuration. No validation
// is performed; unset fields reach the factory as zero values.
func (b *Builder) Build() *resource.Bundle {
	return resource.NewBundle(
		b.factory.CreateVM(b.vm.Params()),
		b.factory.CreateNetwork(b.network.Params()),
		b.factory.CreateDisk(b.disk.Params()),
	)
}
