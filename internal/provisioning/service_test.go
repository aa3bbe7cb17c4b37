package provisioning_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/api/compute/v1"

	"vmforge/internal/builder"
	"vmforge/internal/family"
	"vmforge/internal/logging"
	"vmforge/internal/metrics"
	"vmforge/internal/prototype"
	"vmforge/internal/provisioning"
	"vmforge/internal/resource"
	"vmforge/internal/store"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// RecordingStore wraps a MemoryStore, counts inserts per table and can be
// told to fail or panic on inserts into one table.
type RecordingStore struct {
	*store.MemoryStore

	mu        sync.Mutex
	inserts    map[string]int
	failTable  string
	panicTable string
}

func NewRecordingStore() *RecordingStore {
	return &RecordingStore{MemoryStore: store.NewMemoryStore(), inserts: make(map[string]int)}
}

func (s *RecordingStore) Insert(ctx context.Context, table string, rec resource.Record) error {
	s.mu.Lock()
	s.inserts[table]++
	fail := table == s.failTable
	explode := table == s.panicTable
	s.mu.Unlock()
	if explode {
		panic("disk controller offline")
	}
	if fail {
		return fmt.Errorf("connection reset")
	}
	return s.MemoryStore.Insert(ctx, table, rec)
}

func (s *RecordingStore) Inserts(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts[table]
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func directParams() family.Params {
	return family.Params{
		"vm":      map[string]any{"instanceType": "t3.micro", "region": "us-east-1", "vcpus": 1, "memoryGB": 1, "password": "secret"},
		"network": map[string]any{"region": "us-east-1", "vpcId": "vpc-1", "firewallRules": []any{"ssh"}},
		"disk":    map[string]any{"sizeGB": 20, "volumeType": "gp3"},
	}
}

var _ = Describe("Provisioning Service", func() {
	var (
		ctx context.Context
		st  *RecordingStore
		reg *prometheus.Registry
		m   *metrics.Metrics
		svc *provisioning.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = NewRecordingStore()
		reg = prometheus.NewRegistry()
		m = metrics.New(reg)
		svc = provisioning.NewService(st,
			provisioning.WithIDGenerator(resource.NewSequenceGenerator()),
			provisioning.WithClock(func() time.Time { return fixedNow }),
			provisioning.WithMetrics(m),
		)
	})

	Context("Direct provisioning", func() {
		It("should persist the bundle and report success", func() {
			result := svc.Provision(ctx, "aws", directParams())

			Expect(result.Err()).NotTo(HaveOccurred())
			Expect(result.Status()).To(Equal(provisioning.StatusSuccess))
			Expect(result.VMID()).To(Equal("aws-vm-1"))
			Expect(result.Provider()).To(Equal("aws"))
			Expect(result.Timestamp()).To(Equal(fixedNow))

			vm, err := svc.GetVM(ctx, "aws-vm-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(vm.Class()).To(Equal("t3.micro"))

			network, err := st.SelectOne(ctx, store.TableNetworks, "network_id", "aws-net-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(network.Strings("firewall_rules")).To(Equal([]string{"ssh"}))
			Expect(network.Map("config").String("vpcId")).To(Equal("vpc-1"))

			disk, err := st.SelectOne(ctx, store.TableDisks, "disk_id", "aws-disk-3")
			Expect(err).NotTo(HaveOccurred())
			Expect(intField(disk, "size_gb")).To(Equal(20))
		})

		It("should fail on a missing disk section without touching the resource tables", func() {
			params := directParams()
			delete(params, "disk")

			result := svc.Provision(ctx, "gcp", params)

			Expect(result.Status()).To(Equal(provisioning.StatusError))
			Expect(result.Err()).To(MatchError(provisioning.ErrMissingRequiredResource))
			Expect(result.ErrorMessage()).To(ContainSubstring("disk"))
			Expect(result.Provider()).To(Equal("gcp"))
			Expect(result.VMID()).To(BeEmpty())
			Expect(result.Timestamp()).To(Equal(fixedNow))

			Expect(st.Inserts(store.TableVirtualMachines)).To(Equal(0))
			Expect(st.Inserts(store.TableNetworks)).To(Equal(0))
			Expect(st.Inserts(store.TableDisks)).To(Equal(0))
		})

		It("should reject an unknown provider", func() {
			result := svc.Provision(ctx, "digitalocean", directParams())
			Expect(result.Err()).To(MatchError(resource.ErrUnsupportedProvider))
			Expect(result.Provider()).To(Equal("digitalocean"))
		})

		It("should wrap store failures with the table name", func() {
			st.failTable = store.TableNetworks

			result := svc.Provision(ctx, "azure", directParams())

			Expect(result.Status()).To(Equal(provisioning.StatusError))
			var perr *provisioning.PersistenceError
			Expect(errors.As(result.Err(), &perr)).To(BeTrue())
			Expect(perr.Table).To(Equal(store.TableNetworks))
			Expect(result.ErrorMessage()).To(ContainSubstring("networks"))
		})
	})

	Context("Builder provisioning", func() {
		It("should size the bundle from the policy tables", func() {
			result := svc.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{
				Provider: "gcp",
				Category: "memory-optimized",
				Size:     "medium",
				Region:   "europe-west1-b",
			})
			Expect(result.Succeeded()).To(BeTrue())

			vm, err := svc.GetVM(ctx, result.VMID())
			Expect(err).NotTo(HaveOccurred())
			Expect(vm.Class()).To(Equal("n2-highmem-4"))
			Expect(vm.Specs().VCPUs).To(Equal(4))
			Expect(vm.Specs().MemoryGB).To(Equal(32))
			Expect(vm.Specs().MemoryOptimization).To(BeTrue())
			Expect(vm.Specs().DiskOptimization).To(BeFalse())

			disks, err := st.List(ctx, store.TableDisks, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(intField(disks[0], "size_gb")).To(Equal(200))
		})

		It("should reject an unknown category", func() {
			result := svc.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{Provider: "aws", Category: "gpu", Size: "small"})
			Expect(result.Err()).To(MatchError(builder.ErrUnsupportedCategory))
			Expect(st.Inserts(store.TableVirtualMachines)).To(Equal(0))
		})

		It("should provision batches in request order", func() {
			reqs := []provisioning.PolicyRequest{
				{Provider: "aws", Category: "standard", Size: "small", Region: "us-east-1"},
				{Provider: "nope", Category: "standard", Size: "small"},
				{Provider: "onpremise", Category: "compute-optimized", Size: "large", Region: "dc-1"},
				{Provider: "azure", Category: "standard", Size: "large", Region: "eastus"},
			}
			results := svc.ProvisionBatch(ctx, reqs)

			Expect(results).To(HaveLen(4))
			Expect(results[0].Provider()).To(Equal("aws"))
			Expect(results[1].Err()).To(MatchError(resource.ErrUnsupportedProvider))
			Expect(results[2].Provider()).To(Equal("onpremise"))
			Expect(results[3].Provider()).To(Equal("azure"))
			Expect(results[0].Succeeded() && results[2].Succeeded() && results[3].Succeeded()).To(BeTrue())
			Expect(st.Inserts(store.TableVirtualMachines)).To(Equal(3))
		})
	})

	Context("Prototype provisioning", func() {
		It("should persist an independent clone", func() {
			template := &resource.AzureVirtualMachine{
				VMBase:        resource.VMBase{VMID: "azure-vm-template", State: resource.StatusActive, Compute: resource.Compute{VCPUs: 2, MemoryGB: 8}},
				VMSize:        "D2s_v3",
				Region:        "eastus",
				ResourceGroup: "rg-web",
			}
			Expect(svc.RegisterPrototype("web", template)).To(Succeed())

			result := svc.ProvisionFromPrototype(ctx, "web")
			Expect(result.Succeeded()).To(BeTrue())
			Expect(result.VMID()).NotTo(Equal("azure-vm-template"))
			Expect(result.Provider()).To(Equal("azure"))

			vm, err := svc.GetVM(ctx, result.VMID())
			Expect(err).NotTo(HaveOccurred())
			Expect(vm.(*resource.AzureVirtualMachine).ResourceGroup).To(Equal("rg-web"))
			Expect(st.Inserts(store.TableNetworks)).To(Equal(0))
		})

		It("should report an unknown template", func() {
			result := svc.ProvisionFromPrototype(ctx, "missing")
			Expect(result.Err()).To(MatchError(prototype.ErrPrototypeNotFound))
			Expect(result.Provider()).To(BeEmpty())
		})

		It("should register templates from records", func() {
			Expect(svc.RegisterPrototypeRecord("db", resource.Record{
				"provider":      "onpremise",
				"instance_type": "onprem-mem2",
				"vcpus":         4,
				"memory_gb":     32,
				"datacenter":    "dc-2",
			})).To(Succeed())
			Expect(svc.Prototypes()).To(HaveLen(1))
			Expect(gaugeValue(reg, "vmforge_prototypes_registered")).To(Equal(1.0))

			err := svc.RegisterPrototypeRecord("bad", resource.Record{"provider": "vsphere"})
			Expect(err).To(MatchError(resource.ErrUnsupportedProvider))

			Expect(svc.UnregisterPrototype("db")).To(Succeed())
			Expect(svc.UnregisterPrototype("db")).To(MatchError(prototype.ErrPrototypeNotFound))
		})
	})

	Context("Provisioning log", func() {
		It("should record every request with redacted parameters", func() {
			svc.Provision(ctx, "aws", directParams())
			svc.ProvisionFromPrototype(ctx, "missing")

			logs, err := svc.Logs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(2))

			Expect(logs[0].String("mode")).To(Equal("prototype"))
			Expect(logs[0].String("status")).To(Equal("error"))
			Expect(logs[0]["vm_id"]).To(BeNil())
			Expect(logs[0].String("error_message")).To(ContainSubstring("missing"))

			Expect(logs[1].String("vm_id")).To(Equal("aws-vm-1"))
			Expect(logs[1]["error_message"]).To(BeNil())
			params := logs[1].Map("request_params")
			Expect(params.Map("vm").String("password")).To(Equal("***REDACTED***"))
		})

		It("should redact secrets nested in builder overrides", func() {
			logs := observeLogs()

			result := svc.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{
				Provider: "aws",
				Category: "standard",
				Size:     "small",
				Region:   "us-east-1",
				Params: family.Params{
					"keyPairName": "deploy",
					"vm":          map[string]any{"password": "builder-secret"},
					"network":     map[string]any{"token": "net-token"},
				},
			})
			Expect(result.Succeeded()).To(BeTrue())

			stored, err := svc.Logs(ctx)
			Expect(err).NotTo(HaveOccurred())
			params := stored[0].Map("request_params")
			Expect(params.String("vmType")).To(Equal("standard"))
			Expect(params.String("keyPairName")).To(Equal("deploy"))
			Expect(params.Map("vm").String("password")).To(Equal(logging.Redacted))
			Expect(params.Map("network").String("token")).To(Equal(logging.Redacted))

			requests := logs.FilterMessage("provisioning request").All()
			Expect(requests).To(HaveLen(1))
			logged := requests[0].ContextMap()["params"].(map[string]any)
			Expect(logged["vm"]).To(HaveKeyWithValue("password", logging.Redacted))
			Expect(fmt.Sprint(logged)).NotTo(ContainSubstring("builder-secret"))
		})

		It("should bound the firewall rules written to the bundle log", func() {
			logs := observeLogs()

			rules := make([]any, logging.MaxLogListItems+5)
			for i := range rules {
				rules[i] = fmt.Sprintf("rule-%d", i)
			}
			params := directParams()
			params["network"] = map[string]any{"vpcId": "vpc-1", "firewallRules": rules}
			Expect(svc.Provision(ctx, "aws", params).Succeeded()).To(BeTrue())

			persisted := logs.FilterMessage("bundle persisted").All()
			Expect(persisted).To(HaveLen(1))
			logged := persisted[0].ContextMap()["firewall_rules"].([]any)
			Expect(logged).To(HaveLen(logging.MaxLogListItems + 1))
			Expect(logged[logging.MaxLogListItems]).To(Equal("... and 5 more"))
		})

		It("should not change the result when the log write fails", func() {
			st.failTable = store.TableProvisioningLog
			result := svc.Provision(ctx, "aws", directParams())
			Expect(result.Succeeded()).To(BeTrue())
		})
	})

	Context("Panics", func() {
		It("should turn a panic during construction into an error result", func() {
			st.panicTable = store.TableVirtualMachines

			result := svc.Provision(ctx, "aws", directParams())

			Expect(result.Status()).To(Equal(provisioning.StatusError))
			Expect(result.ErrorMessage()).To(ContainSubstring("construction panicked"))
			Expect(result.ErrorMessage()).To(ContainSubstring("disk controller offline"))
			Expect(result.Provider()).To(Equal("aws"))
			Expect(result.VMID()).To(BeEmpty())
			Expect(result.Timestamp()).To(Equal(fixedNow))

			logs, err := svc.Logs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].String("status")).To(Equal("error"))
			Expect(logs[0].String("provider")).To(Equal("aws"))
			Expect(logs[0].String("error_message")).To(ContainSubstring("construction panicked"))
		})
	})

	Context("Read paths", func() {
		It("should return store.ErrNotFound for unknown vms", func() {
			_, err := svc.GetVM(ctx, "aws-vm-404")
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("should list vms newest first", func() {
			svc.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{Provider: "aws", Category: "standard", Size: "small", Region: "us-east-1"})
			svc.ProvisionWithBuilder(ctx, provisioning.PolicyRequest{Provider: "gcp", Category: "standard", Size: "small", Region: "us-central1-a"})

			vms, err := svc.ListVMs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(vms).To(HaveLen(2))
			Expect(vms[0].String("provider")).To(Equal("gcp"))
		})
	})

	Context("Planning", func() {
		It("should render native requests without persisting", func() {
			plan, err := svc.Plan(ctx, provisioning.PolicyRequest{Provider: "aws", Category: "compute-optimized", Size: "small", Region: "us-west-2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Provider).To(Equal(resource.ProviderAWS))
			Expect(plan.VM.String("instance_type")).To(Equal("c5.large"))
			Expect(plan.Native).To(BeAssignableToTypeOf(&ec2.RunInstancesInput{}))

			gcpPlan, err := svc.Plan(ctx, provisioning.PolicyRequest{Provider: "gcp", Category: "standard", Size: "small", Region: "us-central1-a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(gcpPlan.Native).To(BeAssignableToTypeOf(&compute.Instance{}))

			azurePlan, err := svc.Plan(ctx, provisioning.PolicyRequest{Provider: "azure", Category: "standard", Size: "small", Region: "eastus"})
			Expect(err).NotTo(HaveOccurred())
			Expect(azurePlan.Native).To(BeNil())
			Expect(azurePlan.Record()).NotTo(HaveKey("native"))

			Expect(st.Inserts(store.TableVirtualMachines)).To(Equal(0))
			Expect(st.Inserts(store.TableProvisioningLog)).To(Equal(0))
		})

		It("should surface construction errors", func() {
			_, err := svc.Plan(ctx, provisioning.PolicyRequest{Provider: "aws", Category: "tiny"})
			Expect(err).To(MatchError(builder.ErrUnsupportedCategory))
		})
	})

	Context("Metrics", func() {
		It("should count requests by mode, provider and status", func() {
			svc.Provision(ctx, "aws", directParams())
			svc.Provision(ctx, "aws", family.Params{})

			Expect(testutil.GatherAndCount(reg, "vmforge_provisioning_requests_total")).To(Equal(2))
		})
	})
})

// gaugeValue reads an unlabelled gauge from reg
func gaugeValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	Fail("metric " + name + " not found")
	return 0
}

func intField(rec resource.Record, key string) int {
	v, ok := rec.Int(key)
	Expect(ok).To(BeTrue(), "missing %s", key)
	return v
}

// observeLogs routes the package logger into an in-memory observer until the
// current spec ends
func observeLogs() *observer.ObservedLogs {
	previous := logging.Logger()
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	DeferCleanup(func() { logging.SetLogger(previous) })
	return logs
}
