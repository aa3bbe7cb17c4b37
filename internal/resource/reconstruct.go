package resource

import "fmt"

// ReconstructVM rebuilds a typed virtual machine from its persisted record.
// Optimization flags and key pair missing from older records default to
// false and empty.
func ReconstructVM(rec Record) (VirtualMachine, error) {
	p, err := ParseProvider(rec.String("provider"))
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct vm: %w", err)
	}

	base := VMBase{
		VMID:  rec.String("vm_id"),
		State: rec.String("status"),
		Compute: Compute{
			MemoryOptimization: rec.BoolOr("memory_optimization", false),
			DiskOptimization:   rec.BoolOr("disk_optimization", false),
			KeyPairName:        rec.String("key_pair_name"),
		},
	}
	base.VCPUs, _ = rec.Int("vcpus")
	base.MemoryGB, _ = rec.Int("memory_gb")

	switch p {
	case ProviderAWS:
		return &AWSVirtualMachine{
			VMBase:       base,
			InstanceType: rec.String("instance_type"),
			Region:       rec.String("region"),
			VpcID:        rec.String("vpc_id"),
			AMI:          rec.String("ami"),
		}, nil
	case ProviderAzure:
		return &AzureVirtualMachine{
			VMBase:         base,
			VMSize:         rec.String("vm_size"),
			Region:         rec.String("region"),
			ResourceGroup:  rec.String("resource_group"),
			ImageReference: rec.String("image"),
		}, nil
	case ProviderGCP:
		return &GCPVirtualMachine{
			VMBase:      base,
			MachineType: rec.String("machine_type"),
			Zone:        rec.String("zone"),
			BootDisk:    rec.String("disk"),
			Project:     rec.String("project"),
		}, nil
	default:
		return &OnPremiseVirtualMachine{
			VMBase:       base,
			InstanceType: rec.String("instance_type"),
			Hypervisor:   rec.String("hypervisor"),
			Datacenter:   rec.String("datacenter"),
		}, nil
	}
}

// ReconstructNetwork rebuilds a typed network from its persisted record
func ReconstructNetwork(rec Record) (Network, error) {
	p, err := ParseProvider(rec.String("provider"))
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct network: %w", err)
	}

	base := NetworkBase{
		NetworkID: rec.String("network_id"),
		Zone:      rec.String("region"),
		Rules:     rec.Strings("firewall_rules"),
		Public:    rec.BoolOr("public_ip", false),
		CreatedAt: parseTime(rec.String("created_at")),
	}
	cfg := rec.Map("config")

	switch p {
	case ProviderAWS:
		return &AWSNetwork{
			NetworkBase:   base,
			VpcID:         cfg.String("vpcId"),
			Subnet:        cfg.String("subnet"),
			SecurityGroup: cfg.String("securityGroup"),
		}, nil
	case ProviderAzure:
		return &AzureNetwork{
			NetworkBase:          base,
			VirtualNetwork:       cfg.String("virtualNetwork"),
			SubnetName:           cfg.String("subnetName"),
			NetworkSecurityGroup: cfg.String("networkSecurityGroup"),
		}, nil
	case ProviderGCP:
		return &GCPNetwork{
			NetworkBase:    base,
			NetworkName:    cfg.String("networkName"),
			SubnetworkName: cfg.String("subnetworkName"),
			FirewallTag:    cfg.String("firewallTag"),
		}, nil
	default:
		return &OnPremiseNetwork{
			NetworkBase:       base,
			PhysicalInterface: cfg.String("physicalInterface"),
			VLANID:            cfg.IntPtr("vlanId"),
			FirewallPolicy:    cfg.String("firewallPolicy"),
		}, nil
	}
}

// ReconstructDisk rebuilds a typed disk from its persisted record
func ReconstructDisk(rec Record) (Disk, error) {
	p, err := ParseProvider(rec.String("provider"))
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct disk: %w", err)
	}

	base := DiskBase{
		DiskID:    rec.String("disk_id"),
		Zone:      rec.String("region"),
		IOPSLimit: rec.IntPtr("iops"),
		CreatedAt: parseTime(rec.String("created_at")),
	}
	base.Capacity, _ = rec.Int("size_gb")
	cfg := rec.Map("config")

	switch p {
	case ProviderAWS:
		return &AWSDisk{DiskBase: base, VolumeType: cfg.String("volumeType"), Encrypted: cfg.BoolOr("encrypted", false)}, nil
	case ProviderAzure:
		return &AzureDisk{DiskBase: base, DiskSku: cfg.String("diskSku"), ManagedDisk: cfg.BoolOr("managedDisk", false)}, nil
	case ProviderGCP:
		return &GCPDisk{DiskBase: base, DiskType: cfg.String("diskType"), AutoDelete: cfg.BoolOr("autoDelete", false)}, nil
	default:
		return &OnPremiseDisk{DiskBase: base, StoragePool: cfg.String("storagePool"), RaidLevel: cfg.String("raidLevel")}, nil
	}
}

// ReconstructBundle rebuilds a bundle from the three persisted records
func ReconstructBundle(vmRec, networkRec, diskRec Record) (*Bundle, error) {
	vm, err := ReconstructVM(vmRec)
	if err != nil {
		return nil, err
	}
	network, err := ReconstructNetwork(networkRec)
	if err != nil {
		return nil, err
	}
	disk, err := ReconstructDisk(diskRec)
	if err != nil {
		return nil, err
	}
	b := NewBundle(vm, network, disk)
	if err := b.CheckConsistency(); err != nil {
		return nil, err
	}
	return b, nil
}
