package resource

import "fmt"

// Bundle groups the virtual machine, network and disk produced by one
// provisioning pass. It is not modified after construction.
type Bundle struct {
	vm      VirtualMachine
	network Network
	disk    Disk
}

// NewBundle creates a bundle from its three members
func NewBundle(vm VirtualMachine, network Network, disk Disk) *Bundle {
	return &Bundle{vm: vm, network: network, disk: disk}
}

func (b *Bundle) VM() VirtualMachine { return b.vm }
func (b *Bundle) Network() Network   { return b.network }
func (b *Bundle) Disk() Disk         { return b.disk }

// IsValid reports whether all three members are present
func (b *Bundle) IsValid() bool {
	return b != nil && b.vm != nil && b.network != nil && b.disk != nil
}

// Provider returns the provider shared by the members of a valid bundle
func (b *Bundle) Provider() Provider {
	if b == nil || b.vm == nil {
		return ""
	}
	return b.vm.Provider()
}

// CheckConsistency verifies the bundle is valid and that every member
// reports the same provider.
func (b *Bundle) CheckConsistency() error {
	if !b.IsValid() {
		return fmt.Errorf("bundle is missing one or more resources")
	}
	p := b.vm.Provider()
	if b.network.Provider() != p || b.disk.Provider() != p {
		return fmt.Errorf("bundle mixes providers: vm=%s network=%s disk=%s",
			p, b.network.Provider(), b.disk.Provider())
	}
	return nil
}

// Records returns the canonical records of the three members
func (b *Bundle) Records() (vm, network, disk Record) {
	return b.vm.Record(), b.network.Record(), b.disk.Record()
}
