package family

import "vmforge/internal/resource"

// AWSFactory creates EC2 instances, VPC attachments and EBS volumes
type AWSFactory struct{ base }

// NewAWSFactory creates a new AWSFactory
func NewAWSFactory(opts ...Option) *AWSFactory {
	return &AWSFactory{base: newBase(resource.ProviderAWS, opts)}
}

func (f *AWSFactory) CreateVM(p Params) resource.VirtualMachine {
	return &resource.AWSVirtualMachine{
		VMBase:       f.vmBase(p),
		InstanceType: p.String("instanceType"),
		Region:       p.String("region"),
		VpcID:        p.String("vpcId"),
		AMI:          p.String("ami"),
	}
}

func (f *AWSFactory) CreateNetwork(p Params) resource.Network {
	return &resource.AWSNetwork{
		NetworkBase:   f.networkBase(p),
		VpcID:         p.String("vpcId"),
		Subnet:        p.String("subnet"),
		SecurityGroup: p.String("securityGroup"),
	}
}

func (f *AWSFactory) CreateDisk(p Params) resource.Disk {
	return &resource.AWSDisk{
		DiskBase:   f.diskBase(p),
		VolumeType: p.String("volumeType"),
		Encrypted:  p.Bool("encrypted"),
	}
}
