package provisioning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"vmforge/internal/resource"
)

// awsRootDevice is the root device name of the Amazon Linux and Ubuntu AMIs
const awsRootDevice = "/dev/xvda"

// renderAWS returns the RunInstances request an AWS bundle corresponds to
func renderAWS(bundle *resource.Bundle) (*ec2.RunInstancesInput, error) {
	vm, ok := bundle.VM().(*resource.AWSVirtualMachine)
	if !ok {
		return nil, fmt.Errorf("%w: expected an aws virtual machine", ErrInvalidBundle)
	}
	network, ok := bundle.Network().(*resource.AWSNetwork)
	if !ok {
		return nil, fmt.Errorf("%w: expected an aws network", ErrInvalidBundle)
	}
	disk, ok := bundle.Disk().(*resource.AWSDisk)
	if !ok {
		return nil, fmt.Errorf("%w: expected an aws disk", ErrInvalidBundle)
	}

	size, err := int32Field("disk size", disk.SizeGB())
	if err != nil {
		return nil, err
	}
	ebs := &types.EbsBlockDevice{
		VolumeSize:          aws.Int32(size),
		VolumeType:          types.VolumeType(disk.VolumeType),
		Encrypted:           aws.Bool(disk.Encrypted),
		DeleteOnTermination: aws.Bool(true),
	}
	if iops := disk.IOPS(); iops != nil {
		v, err := int32Field("disk iops", *iops)
		if err != nil {
			return nil, err
		}
		ebs.Iops = aws.Int32(v)
	}

	nic := types.InstanceNetworkInterfaceSpecification{
		DeviceIndex:              aws.Int32(0),
		AssociatePublicIpAddress: aws.Bool(network.PublicIP()),
	}
	if strings.HasPrefix(network.Subnet, "subnet-") {
		nic.SubnetId = aws.String(network.Subnet)
	}
	if network.SecurityGroup != "" {
		nic.Groups = []string{network.SecurityGroup}
	}

	input := &ec2.RunInstancesInput{
		InstanceType: mapInstanceType(vm),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		BlockDeviceMappings: []types.BlockDeviceMapping{
			{DeviceName: aws.String(awsRootDevice), Ebs: ebs},
		},
		NetworkInterfaces: []types.InstanceNetworkInterfaceSpecification{nic},
		TagSpecifications: []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags: awsTags(map[string]string{
					"Name":              vm.ID(),
					"vmforge:network":   network.ID(),
					"vmforge:disk":      disk.ID(),
					"vmforge:vpc":       network.VpcID,
					"vmforge:subnet":    network.Subnet,
					"vmforge:firewalls": strings.Join(network.FirewallRules(), ","),
				}),
			},
		},
	}
	if vm.AMI != "" {
		input.ImageId = aws.String(vm.AMI)
	}
	if vm.KeyPairName != "" {
		input.KeyName = aws.String(vm.KeyPairName)
	}
	return input, nil
}

// mapInstanceType uses the instance type of the VM, falling back to a size
// derived from its compute shape when none was given.
func mapInstanceType(vm *resource.AWSVirtualMachine) types.InstanceType {
	if vm.InstanceType != "" {
		return types.InstanceType(vm.InstanceType)
	}
	cores, memory := vm.VCPUs, vm.MemoryGB
	if cores <= 1 && memory <= 2 {
		return types.InstanceTypeT3Micro
	}
	if cores <= 2 && memory <= 4 {
		return types.InstanceTypeT3Small
	}
	return types.InstanceTypeT3Medium
}

// awsTags converts a map to EC2 tags in a stable order, skipping empty values
func awsTags(m map[string]string) []types.Tag {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	tags := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(m[k])})
	}
	return tags
}

// int32Field converts v for an EC2 int32 field, rejecting values it cannot hold
func int32Field(name string, v int) (int32, error) {
	if v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s %d out of range", ErrInvalidBundle, name, v)
	}
	return int32(v), nil
}
