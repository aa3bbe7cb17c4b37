package family

import "vmforge/internal/resource"

// OnPremiseFactory creates VMs on self-hosted hypervisors, VLAN attachments
// and pool-backed volumes.
type OnPremiseFactory struct{ base }

// NewOnPremiseFactory creates a new OnPremiseFactory
func NewOnPremiseFactory(opts ...Option) *OnPremiseFactory {
	return &OnPremiseFactory{base: newBase(resource.ProviderOnPremise, opts)}
}

// CreateVM accepts the legacy cpu/ram keys besides vcpus/memoryGB, and uses
// region as the datacenter when none is given.
func (f *OnPremiseFactory) CreateVM(p Params) resource.VirtualMachine {
	vm := &resource.OnPremiseVirtualMachine{
		VMBase:       f.vmBase(p),
		InstanceType: p.String("instanceType"),
		Hypervisor:   p.String("hypervisor"),
		Datacenter:   p.String("datacenter", "region"),
	}
	if vm.VCPUs == 0 {
		vm.VCPUs = p.Int("cpu")
	}
	if vm.MemoryGB == 0 {
		vm.MemoryGB = p.Int("ram")
	}
	return vm
}

func (f *OnPremiseFactory) CreateNetwork(p Params) resource.Network {
	return &resource.OnPremiseNetwork{
		NetworkBase:       f.networkBase(p),
		PhysicalInterface: p.String("physicalInterface"),
		VLANID:            p.IntPtr("vlanId"),
		FirewallPolicy:    p.String("firewallPolicy"),
	}
}

func (f *OnPremiseFactory) CreateDisk(p Params) resource.Disk {
	return &resource.OnPremiseDisk{
		DiskBase:    f.diskBase(p),
		StoragePool: p.String("storagePool"),
		RaidLevel:   p.String("raidLevel"),
	}
}
