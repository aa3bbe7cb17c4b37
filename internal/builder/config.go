package builder

import "vmforge/internal/family"

// VMConfig is the virtual machine slice accumulated by a Builder
type VMConfig struct {
	InstanceType       string
	VCPUs              int
	MemoryGB           int
	Region             string
	MemoryOptimization bool
	DiskOptimization   bool
	KeyPairName        string
	// Extra holds caller-supplied provider-specific fields. They take
	// precedence over every field above.
	Extra family.Params
}

// Params renders the configuration with the keys the factories read
func (c VMConfig) Params() family.Params {
	core := family.Params{
		"instanceType":       c.InstanceType,
		"vcpus":              c.VCPUs,
		"memoryGB":           c.MemoryGB,
		"region":             c.Region,
		"memoryOptimization": c.MemoryOptimization,
		"diskOptimization":   c.DiskOptimization,
	}
	if c.KeyPairName != "" {
		core["keyPairName"] = c.KeyPairName
	}
	return family.Merge(core, c.Extra)
}

// NetworkConfig is the network slice accumulated by a Builder
type NetworkConfig struct {
	Region        string
	Attributes    family.Params
	FirewallRules []string
	PublicIP      bool
}

// Params renders the configuration. Region, firewall rules and the public IP
// flag always win over same-named attributes.
func (c NetworkConfig) Params() family.Params {
	rules := make([]string, len(c.FirewallRules))
	copy(rules, c.FirewallRules)
	return family.Merge(c.Attributes, family.Params{
		"region":        c.Region,
		"firewallRules": rules,
		"publicIP":      c.PublicIP,
	})
}

// DiskConfig is the disk slice accumulated by a Builder
type DiskConfig struct {
	SizeGB     int
	Region     string
	Attributes family.Params
	IOPS       *int
}

// Params renders the configuration. Attributes are applied over size and
// region; IOPS is only present when it was set.
func (c DiskConfig) Params() family.Params {
	out := family.Merge(family.Params{
		"sizeGB": c.SizeGB,
		"region": c.Region,
	}, c.Attributes)
	if c.IOPS != nil {
		out["iops"] = *c.IOPS
	}
	return out
}
