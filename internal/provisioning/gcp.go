package provisioning

import (
	"fmt"
	"strings"

	"google.golang.org/api/compute/v1"

	"vmforge/internal/resource"
)

// renderGCP returns the instances.insert body a GCP bundle corresponds to
func renderGCP(bundle *resource.Bundle) (*compute.Instance, error) {
	vm, ok := bundle.VM().(*resource.GCPVirtualMachine)
	if !ok {
		return nil, fmt.Errorf("%w: expected a gcp virtual machine", ErrInvalidBundle)
	}
	network, ok := bundle.Network().(*resource.GCPNetwork)
	if !ok {
		return nil, fmt.Errorf("%w: expected a gcp network", ErrInvalidBundle)
	}
	disk, ok := bundle.Disk().(*resource.GCPDisk)
	if !ok {
		return nil, fmt.Errorf("%w: expected a gcp disk", ErrInvalidBundle)
	}

	zone := vm.Zone
	if zone == "" {
		zone = network.Region()
	}

	nic := &compute.NetworkInterface{
		Network: fmt.Sprintf("global/networks/%s", orDefault(network.NetworkName, "default")),
	}
	if network.SubnetworkName != "" {
		nic.Subnetwork = fmt.Sprintf("regions/%s/subnetworks/%s", regionOfZone(zone), network.SubnetworkName)
	}
	if network.PublicIP() {
		nic.AccessConfigs = []*compute.AccessConfig{
			{
				Type: "ONE_TO_ONE_NAT",
				Name: "External NAT",
			},
		}
	}

	initParams := &compute.AttachedDiskInitializeParams{
		DiskSizeGb:  int64(disk.SizeGB()),
		SourceImage: vm.BootDisk, // e.g., "projects/ubuntu-os-cloud/global/images/family/ubuntu-2204-lts"
	}
	if disk.DiskType != "" {
		initParams.DiskType = fmt.Sprintf("zones/%s/diskTypes/%s", zone, disk.DiskType)
	}
	if iops := disk.IOPS(); iops != nil {
		initParams.ProvisionedIops = int64(*iops)
	}

	var tags []string
	if network.FirewallTag != "" {
		tags = append(tags, network.FirewallTag)
	}
	tags = append(tags, network.FirewallRules()...)

	instance := &compute.Instance{
		Name:         vm.ID(),
		MachineType:  fmt.Sprintf("zones/%s/machineTypes/%s", zone, mapMachineType(vm)),
		CanIpForward: false,
		Disks: []*compute.AttachedDisk{
			{
				AutoDelete:       disk.AutoDelete,
				Boot:             true,
				Type:             "PERSISTENT",
				InitializeParams: initParams,
			},
		},
		NetworkInterfaces: []*compute.NetworkInterface{nic},
		Labels: map[string]string{
			"vmforge-network": network.ID(),
			"vmforge-disk":    disk.ID(),
		},
	}
	if len(tags) > 0 {
		instance.Tags = &compute.Tags{Items: tags}
	}
	if vm.KeyPairName != "" {
		instance.Metadata = &compute.Metadata{
			Items: []*compute.MetadataItems{
				{
					Key:   "ssh-keys-ref",
					Value: &vm.KeyPairName,
				},
			},
		}
	}
	return instance, nil
}

// mapMachineType uses the machine type of the VM, falling back to a type
// derived from its compute shape when none was given.
func mapMachineType(vm *resource.GCPVirtualMachine) string {
	if vm.MachineType != "" {
		return vm.MachineType
	}
	cores, memory := vm.VCPUs, vm.MemoryGB
	if cores <= 1 && memory <= 4 {
		return "e2-medium"
	}
	if cores <= 2 && memory <= 8 {
		return "e2-standard-2"
	}
	return "e2-standard-4"
}

// regionOfZone strips the zone suffix: us-central1-a -> us-central1
func regionOfZone(zone string) string {
	if i := strings.LastIndex(zone, "-"); i > 0 && len(zone)-i == 2 {
		return zone[:i]
	}
	return zone
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
