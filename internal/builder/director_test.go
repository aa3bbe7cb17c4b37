package builder_test

import (
	"vmforge/internal/builder"
	"vmforge/internal/family"
	"vmforge/internal/resource"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newDirector(p resource.Provider) *builder.Director {
	f, err := family.New(p, family.WithIDGenerator(resource.NewSequenceGenerator()))
	Expect(err).NotTo(HaveOccurred())
	return builder.NewDirector(builder.New(f))
}

var _ = Describe("Director", func() {
	Context("for every provider, category and size", func() {
		It("should produce a valid single-provider bundle", func() {
			for _, p := range resource.Providers() {
				d := newDirector(p)
				for _, c := range builder.Categories() {
					for _, s := range builder.Sizes() {
						bundle, err := d.Construct(c, s, "region-1", builder.Options{})
						Expect(err).NotTo(HaveOccurred())
						Expect(bundle.IsValid()).To(BeTrue())
						Expect(bundle.VM().Provider()).To(Equal(p))
						Expect(bundle.Network().Provider()).To(Equal(p))
						Expect(bundle.Disk().Provider()).To(Equal(p))

						shape, _ := builder.Lookup(p, c, s)
						Expect(bundle.VM().Class()).To(Equal(shape.InstanceType))
						Expect(bundle.VM().Specs().VCPUs).To(Equal(shape.VCPUs))
						Expect(bundle.VM().Specs().MemoryGB).To(Equal(shape.MemoryGB))
						Expect(bundle.Disk().SizeGB()).To(Equal(builder.DefaultDiskSize(c)))
					}
				}
			}
		})
	})

	Context("memory-optimized medium", func() {
		It("should use the sizing table and flags", func() {
			bundle := newDirector(resource.ProviderAzure).ConstructMemoryOptimizedVM(builder.SizeMedium, "westeurope", builder.Options{})

			vm := bundle.VM().(*resource.AzureVirtualMachine)
			Expect(vm.VMSize).To(Equal("E4s_v3"))
			Expect(vm.Region).To(Equal("westeurope"))
			Expect(vm.VCPUs).To(Equal(4))
			Expect(vm.MemoryGB).To(Equal(32))
			Expect(vm.MemoryOptimization).To(BeTrue())
			Expect(vm.DiskOptimization).To(BeFalse())
			Expect(bundle.Disk().SizeGB()).To(Equal(200))
		})
	})

	Context("category flags", func() {
		It("should set no flags for standard and the disk flag for compute-optimized", func() {
			d := newDirector(resource.ProviderAWS)

			std := d.ConstructStandardVM(builder.SizeSmall, "us-east-1", builder.Options{}).VM().Specs()
			Expect(std.MemoryOptimization).To(BeFalse())
			Expect(std.DiskOptimization).To(BeFalse())

			cpu := d.ConstructComputeOptimizedVM(builder.SizeSmall, "us-east-1", builder.Options{})
			Expect(cpu.VM().Specs().MemoryOptimization).To(BeFalse())
			Expect(cpu.VM().Specs().DiskOptimization).To(BeTrue())
			Expect(cpu.Disk().SizeGB()).To(Equal(150))
		})
	})

	Context("defaults and overrides", func() {
		It("should apply provider defaults", func() {
			bundle := newDirector(resource.ProviderAWS).ConstructStandardVM(builder.SizeSmall, "us-east-1", builder.Options{})

			network := bundle.Network().(*resource.AWSNetwork)
			Expect(network.VpcID).To(Equal("vpc-default"))
			Expect(network.Subnet).To(Equal("10.0.0.0/24"))
			Expect(network.SecurityGroup).To(Equal("sg-default"))
			Expect(network.Region()).To(Equal("us-east-1"))

			disk := bundle.Disk().(*resource.AWSDisk)
			Expect(disk.VolumeType).To(Equal("gp3"))
			Expect(disk.Encrypted).To(BeTrue())
			Expect(disk.IOPS()).To(BeNil())
		})

		It("should replace only the fields the caller supplies", func() {
			opts := builder.OptionsFromParams(family.Params{
				"network": map[string]any{"securityGroup": "sg-web"},
				"disk":    map[string]any{"encrypted": false, "sizeGB": 64, "iops": 4000},
			})
			bundle := newDirector(resource.ProviderAWS).ConstructStandardVM(builder.SizeSmall, "us-east-1", opts)

			network := bundle.Network().(*resource.AWSNetwork)
			Expect(network.SecurityGroup).To(Equal("sg-web"))
			Expect(network.VpcID).To(Equal("vpc-default"))

			disk := bundle.Disk().(*resource.AWSDisk)
			Expect(disk.Encrypted).To(BeFalse())
			Expect(disk.VolumeType).To(Equal("gp3"))
			Expect(disk.SizeGB()).To(Equal(64))
			Expect(*disk.IOPS()).To(Equal(4000))
		})

		It("should let extra vm fields win over the sizing table", func() {
			opts := builder.Options{
				KeyPairName: "deploy",
				VM:          family.Params{"ami": "ami-42", "instanceType": "t3.nano"},
			}
			vm := newDirector(resource.ProviderAWS).ConstructStandardVM(builder.SizeLarge, "us-east-1", opts).VM().(*resource.AWSVirtualMachine)
			Expect(vm.AMI).To(Equal("ami-42"))
			Expect(vm.InstanceType).To(Equal("t3.nano"))
			Expect(vm.VCPUs).To(Equal(4))
			Expect(vm.KeyPairName).To(Equal("deploy"))
		})

		It("should only set firewall rules and public ip when supplied", func() {
			d := newDirector(resource.ProviderGCP)

			plain := d.ConstructStandardVM(builder.SizeSmall, "us-central1-a", builder.Options{})
			Expect(plain.Network().FirewallRules()).To(BeEmpty())
			Expect(plain.Network().PublicIP()).To(BeFalse())

			public := true
			opts := builder.Options{Network: builder.NetworkOptions{FirewallRules: []string{"allow-ssh"}, PublicIP: &public}}
			custom := d.ConstructStandardVM(builder.SizeSmall, "us-central1-a", opts)
			Expect(custom.Network().FirewallRules()).To(Equal([]string{"allow-ssh"}))
			Expect(custom.Network().PublicIP()).To(BeTrue())
		})
	})

	Context("unknown inputs", func() {
		It("should fall back to small for an unknown size", func() {
			bundle := newDirector(resource.ProviderOnPremise).ConstructStandardVM("huge", "dc-1", builder.Options{})
			Expect(bundle.VM().Class()).To(Equal("onprem-std1"))
		})

		It("should reject an unknown category", func() {
			_, err := newDirector(resource.ProviderAWS).Construct("gpu", builder.SizeSmall, "us-east-1", builder.Options{})
			Expect(err).To(MatchError(builder.ErrUnsupportedCategory))
		})
	})

	Context("rebinding", func() {
		It("should follow the provider of the new builder", func() {
			d := newDirector(resource.ProviderAWS)
			d.SetBuilder(builder.New(family.NewOnPremiseFactory()))
			bundle := d.ConstructStandardVM(builder.SizeSmall, "dc-2", builder.Options{})
			Expect(bundle.Provider()).To(Equal(resource.ProviderOnPremise))

			network := bundle.Network().(*resource.OnPremiseNetwork)
			Expect(*network.VLANID).To(Equal(100))
		})
	})
})
