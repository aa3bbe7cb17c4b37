package family

import "vmforge/internal/resource"

// AzureFactory creates Azure VMs, virtual network attachments and managed disks
type AzureFactory struct{ base }

// NewAzureFactory creates a new AzureFactory
func NewAzureFactory(opts ...Option) *AzureFactory {
	return &AzureFactory{base: newBase(resource.ProviderAzure, opts)}
}

// CreateVM reads vmSize and location, falling back to the provider-neutral
// instanceType and region keys used by the builder.
func (f *AzureFactory) CreateVM(p Params) resource.VirtualMachine {
	return &resource.AzureVirtualMachine{
		VMBase:         f.vmBase(p),
		VMSize:         p.String("vmSize", "instanceType"),
		Region:         p.String("location", "region"),
		ResourceGroup:  p.String("resourceGroup"),
		ImageReference: p.String("imageReference"),
	}
}

func (f *AzureFactory) CreateNetwork(p Params) resource.Network {
	return &resource.AzureNetwork{
		NetworkBase:          f.networkBase(p),
		VirtualNetwork:       p.String("virtualNetwork"),
		SubnetName:           p.String("subnetName"),
		NetworkSecurityGroup: p.String("networkSecurityGroup"),
	}
}

func (f *AzureFactory) CreateDisk(p Params) resource.Disk {
	return &resource.AzureDisk{
		DiskBase:    f.diskBase(p),
		DiskSku:     p.String("diskSku"),
		ManagedDisk: p.Bool("managedDisk"),
	}
}
