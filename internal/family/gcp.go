package family

import "vmforge/internal/resource"

// GCPFactory creates Compute Engine instances, VPC attachments and persistent disks
type GCPFactory struct{ base }

// NewGCPFactory creates a new GCPFactory
func NewGCPFactory(opts ...Option) *GCPFactory {
	return &GCPFactory{base: newBase(resource.ProviderGCP, opts)}
}

// CreateVM reads machineType and zone, falling back to instanceType and region
func (f *GCPFactory) CreateVM(p Params) resource.VirtualMachine {
	return &resource.GCPVirtualMachine{
		VMBase:      f.vmBase(p),
		MachineType: p.String("machineType", "instanceType"),
		Zone:        p.String("zone", "region"),
		BootDisk:    p.String("disk"),
		Project:     p.String("project"),
	}
}

func (f *GCPFactory) CreateNetwork(p Params) resource.Network {
	return &resource.GCPNetwork{
		NetworkBase:    f.networkBase(p),
		NetworkName:    p.String("networkName"),
		SubnetworkName: p.String("subnetworkName"),
		FirewallTag:    p.String("firewallTag"),
	}
}

func (f *GCPFactory) CreateDisk(p Params) resource.Disk {
	return &resource.GCPDisk{
		DiskBase:   f.diskBase(p),
		DiskType:   p.String("diskType"),
		AutoDelete: p.Bool("autoDelete"),
	}
}
