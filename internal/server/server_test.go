package server_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"vmforge/internal/provisioning"
	"vmforge/internal/resource"
	"vmforge/internal/server"
	"vmforge/internal/store"
)

const bufSize = 1024 * 1024

var _ = Describe("gRPC Server", func() {
	var (
		lis    *bufconn.Listener
		srv    *grpc.Server
		conn   *grpc.ClientConn
		client *server.Client
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		lis = bufconn.Listen(bufSize)
		srv = grpc.NewServer()

		svc := provisioning.NewService(store.NewMemoryStore(),
			provisioning.WithIDGenerator(resource.NewSequenceGenerator()),
			provisioning.WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }),
		)
		server.RegisterProvisioningServer(srv, server.NewServer(svc, nil))

		go func() {
			if err := srv.Serve(lis); err != nil {
				_ = err
			}
		}()

		var err error
		conn, err = grpc.NewClient("passthrough://bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}), grpc.WithTransportCredentials(insecure.NewCredentials()))
		Expect(err).NotTo(HaveOccurred())

		client = server.NewClient(conn)
	})

	AfterEach(func() {
		cancel()
		conn.Close()
		srv.Stop()
		lis.Close()
	})

	Context("Provision", func() {
		It("should return a success result", func() {
			result, err := client.Provision(ctx, "gcp", map[string]any{
				"vm":      map[string]any{"machineType": "e2-small", "zone": "us-central1-a", "vcpus": 2, "memoryGB": 2},
				"network": map[string]any{"networkName": "default"},
				"disk":    map[string]any{"sizeGB": 10},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.String("status")).To(Equal("success"))
			Expect(result.String("vmId")).To(Equal("gcp-vm-1"))
			Expect(result.String("provider")).To(Equal("gcp"))
			Expect(result["errorMessage"]).To(BeNil())
		})

		It("should report a failed request in the result, not as an rpc error", func() {
			result, err := client.Provision(ctx, "aws", map[string]any{"vm": map[string]any{}})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.String("status")).To(Equal("error"))
			Expect(result["vmId"]).To(BeNil())
			Expect(result.String("errorMessage")).To(ContainSubstring("network, disk"))
		})
	})

	Context("ProvisionWithBuilder", func() {
		It("should size and persist the bundle", func() {
			result, err := client.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{
				Provider: "azure",
				Category: "memory-optimized",
				Size:     "medium",
				Region:   "westeurope",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.String("status")).To(Equal("success"))

			vm, err := client.GetVM(ctx, result.String("vmId"))
			Expect(err).NotTo(HaveOccurred())
			Expect(vm.String("vm_size")).To(Equal("E4s_v3"))
			Expect(vm.String("region")).To(Equal("westeurope"))
		})

		It("should run batches in order", func() {
			results, err := client.ProvisionBatch(ctx, []provisioning.PolicyRequest{
				{Provider: "aws", Category: "standard", Size: "small", Region: "us-east-1"},
				{Provider: "aws", Category: "gpu", Size: "small"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].String("status")).To(Equal("success"))
			Expect(results[1].String("status")).To(Equal("error"))
		})

		It("should reject an empty batch", func() {
			_, err := client.ProvisionBatch(ctx, nil)
			Expect(status.Code(err)).To(Equal(codes.InvalidArgument))
		})
	})

	Context("Plan", func() {
		It("should include the native request for aws", func() {
			plan, err := client.Plan(ctx, provisioning.PolicyRequest{Provider: "aws", Category: "standard", Size: "small", Region: "us-east-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Map("vm").String("instance_type")).To(Equal("t3.medium"))
			Expect(plan.Map("native")).NotTo(BeNil())
		})

		It("should map an unknown category to InvalidArgument", func() {
			_, err := client.Plan(ctx, provisioning.PolicyRequest{Provider: "aws", Category: "gpu", Size: "small"})
			Expect(status.Code(err)).To(Equal(codes.InvalidArgument))
		})
	})

	Context("Prototypes", func() {
		It("should register, clone, list and remove templates", func() {
			Expect(client.RegisterPrototype(ctx, "web", map[string]any{
				"provider":      "aws",
				"instance_type": "t3.medium",
				"region":        "us-east-1",
				"vcpus":         2,
				"memory_gb":     4,
			})).To(Succeed())

			prototypes, err := client.ListPrototypes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(prototypes).To(HaveLen(1))
			Expect(prototypes[0].String("name")).To(Equal("web"))

			result, err := client.ProvisionFromPrototype(ctx, "web")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.String("status")).To(Equal("success"))
			Expect(result.String("provider")).To(Equal("aws"))

			Expect(client.RemovePrototype(ctx, "web")).To(Succeed())
			err = client.RemovePrototype(ctx, "web")
			Expect(status.Code(err)).To(Equal(codes.NotFound))
		})

		It("should reject an empty prototype name", func() {
			err := client.RegisterPrototype(ctx, "", map[string]any{"provider": "aws", "instance_type": "t3.micro"})
			Expect(status.Code(err)).To(Equal(codes.InvalidArgument))
			Expect(err.Error()).To(ContainSubstring("prototype name is required"))
		})

		It("should reject a template for an unknown provider", func() {
			err := client.RegisterPrototype(ctx, "bad", map[string]any{"provider": "vsphere"})
			Expect(status.Code(err)).To(Equal(codes.InvalidArgument))
		})
	})

	Context("Read paths", func() {
		It("should return NotFound for an unknown vm", func() {
			_, err := client.GetVM(ctx, "aws-vm-404")
			Expect(status.Code(err)).To(Equal(codes.NotFound))
		})

		It("should list vms and logs newest first", func() {
			_, err := client.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{Provider: "onpremise", Category: "standard", Size: "small", Region: "dc-1"})
			Expect(err).NotTo(HaveOccurred())
			_, err = client.ProvisionFromPrototype(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())

			vms, err := client.ListVMs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(vms).To(HaveLen(1))
			Expect(vms[0].String("provider")).To(Equal("onpremise"))

			logs, err := client.Logs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(2))
			Expect(logs[0].String("mode")).To(Equal("prototype"))
			Expect(logs[1].String("mode")).To(Equal("builder"))
		})
	})
})
