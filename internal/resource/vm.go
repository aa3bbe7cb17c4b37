package resource

// StatusActive is the only lifecycle state a virtual machine is created in
const StatusActive = "active"

// VirtualMachine is implemented by the four provider-specific VM variants
type VirtualMachine interface {
	ID() string
	Provider() Provider
	Status() string
	// Location is the region, location, zone or datacenter depending on the provider
	Location() string
	// Class is the provider-specific instance class (instance type, VM size, machine type)
	Class() string
	Specs() Compute
	Record() Record
	// Clone returns an independent copy carrying the given identifier
	Clone(id string) VirtualMachine
}

// Compute holds the sizing attributes shared by every VM variant
type Compute struct {
	VCPUs              int
	MemoryGB           int
	MemoryOptimization bool
	DiskOptimization   bool
	KeyPairName        string
}

// VMBase carries the identity and sizing common to all variants
type VMBase struct {
	VMID  string
	State string
	Compute
}

func (b VMBase) ID() string     { return b.VMID }
func (b VMBase) Status() string { return b.State }
func (b VMBase) Specs() Compute { return b.Compute }

func (b VMBase) record(p Provider) Record {
	return Record{
		"vm_id":               b.VMID,
		"provider":            string(p),
		"status":              b.State,
		"vcpus":               b.VCPUs,
		"memory_gb":           b.MemoryGB,
		"memory_optimization": b.MemoryOptimization,
		"disk_optimization":   b.DiskOptimization,
		"key_pair_name":       nullable(b.KeyPairName),
	}
}

// AWSVirtualMachine is an EC2-style instance
type AWSVirtualMachine struct {
	VMBase
	InstanceType string
	Region       string
	VpcID        string
	AMI          string
}

func (vm *AWSVirtualMachine) Provider() Provider { return ProviderAWS }
func (vm *AWSVirtualMachine) Location() string   { return vm.Region }
func (vm *AWSVirtualMachine) Class() string      { return vm.InstanceType }

func (vm *AWSVirtualMachine) Record() Record {
	rec := vm.record(ProviderAWS)
	rec["instance_type"] = nullable(vm.InstanceType)
	rec["region"] = nullable(vm.Region)
	rec["vpc_id"] = nullable(vm.VpcID)
	rec["ami"] = nullable(vm.AMI)
	return rec
}

func (vm *AWSVirtualMachine) Clone(id string) VirtualMachine {
	c := *vm
	c.VMID = id
	return &c
}

// AzureVirtualMachine is an Azure compute VM
type AzureVirtualMachine struct {
	VMBase
	VMSize         string
	Region         string
	ResourceGroup  string
	ImageReference string
}

func (vm *AzureVirtualMachine) Provider() Provider { return ProviderAzure }
func (vm *AzureVirtualMachine) Location() string   { return vm.Region }
func (vm *AzureVirtualMachine) Class() string      { return vm.VMSize }

func (vm *AzureVirtualMachine) Record() Record {
	rec := vm.record(ProviderAzure)
	rec["vm_size"] = nullable(vm.VMSize)
	rec["region"] = nullable(vm.Region)
	rec["resource_group"] = nullable(vm.ResourceGroup)
	rec["image"] = nullable(vm.ImageReference)
	return rec
}

func (vm *AzureVirtualMachine) Clone(id string) VirtualMachine {
	c := *vm
	c.VMID = id
	return &c
}

// GCPVirtualMachine is a Compute Engine instance
type GCPVirtualMachine struct {
	VMBase
	MachineType string
	Zone        string
	BootDisk    string
	Project     string
}

func (vm *GCPVirtualMachine) Provider() Provider { return ProviderGCP }
func (vm *GCPVirtualMachine) Location() string   { return vm.Zone }
func (vm *GCPVirtualMachine) Class() string      { return vm.MachineType }

func (vm *GCPVirtualMachine) Record() Record {
	rec := vm.record(ProviderGCP)
	rec["machine_type"] = nullable(vm.MachineType)
	rec["zone"] = nullable(vm.Zone)
	rec["disk"] = nullable(vm.BootDisk)
	rec["project"] = nullable(vm.Project)
	return rec
}

func (vm *GCPVirtualMachine) Clone(id string) VirtualMachine {
	c := *vm
	c.VMID = id
	return &c
}

// OnPremiseVirtualMachine is a VM on a self-hosted hypervisor
type OnPremiseVirtualMachine struct {
	VMBase
	InstanceType string
	Hypervisor   string
	Datacenter   string
}

func (vm *OnPremiseVirtualMachine) Provider() Provider { return ProviderOnPremise }
func (vm *OnPremiseVirtualMachine) Location() string   { return vm.Datacenter }
func (vm *OnPremiseVirtualMachine) Class() string      { return vm.InstanceType }

func (vm *OnPremiseVirtualMachine) Record() Record {
	rec := vm.record(ProviderOnPremise)
	rec["instance_type"] = nullable(vm.InstanceType)
	rec["hypervisor"] = nullable(vm.Hypervisor)
	rec["datacenter"] = nullable(vm.Datacenter)
	return rec
}

func (vm *OnPremiseVirtualMachine) Clone(id string) VirtualMachine {
	c := *vm
	c.VMID = id
	return &c
}
