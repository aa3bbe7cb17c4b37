// Package provisioning is the entry point for provisioning requests. It
// exposes the direct, builder and prototype construction paths, persists what
// they produce and reports every request as a Result.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vmforge/internal/builder"
	"vmforge/internal/family"
	"vmforge/internal/logging"
	"vmforge/internal/metrics"
	"vmforge/internal/prototype"
	"vmforge/internal/resource"
	"vmforge/internal/store"
)

// DefaultBatchWorkers bounds ProvisionBatch when no limit is configured
const DefaultBatchWorkers = 4

// LogsLimit is the number of log records returned by Logs
const LogsLimit = 100

// PolicyRequest describes a builder-driven provisioning request
type PolicyRequest struct {
	Provider string
	Category string
	Size     string
	Region   string
	// Params holds optional overrides: keyPairName plus vm, network and disk objects
	Params family.Params
}

// Option configures a Service
type Option func(*Service)

// WithIDGenerator sets the identifier source for every created resource
func WithIDGenerator(ids resource.IDGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

// WithClock sets the time source for results, logs and resource timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRegistry uses an existing prototype registry
func WithRegistry(r *prototype.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBatchWorkers bounds the concurrency of ProvisionBatch
func WithBatchWorkers(n int) Option {
	return func(s *Service) { s.batchWorkers = n }
}

// Service coordinates factories, builders and the prototype registry with the
// persistence store. It is safe for concurrent use; builders and directors are
// created per request.
type Service struct {
	store        store.Store
	registry     *prototype.Registry
	ids          resource.IDGenerator
	now          func() time.Time
	metrics      *metrics.Metrics
	batchWorkers int
}

// NewService creates a Service persisting into st
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:        st,
		ids:          resource.UUIDGenerator{},
		now:          time.Now,
		batchWorkers: DefaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prototype.NewRegistry(s.ids)
	}
	if s.batchWorkers <= 0 {
		s.batchWorkers = DefaultBatchWorkers
	}
	s.metrics.SetPrototypes(s.registry.Len())
	return s
}

// Registry returns the prototype registry owned by the service
func (s *Service) Registry() *prototype.Registry {
	return s.registry
}

func (s *Service) factory(p resource.Provider) (family.Factory, error) {
	return family.New(p, family.WithIDGenerator(s.ids), family.WithClock(s.now))
}

// attempt collects what a construction path learned before it finished or failed
type attempt struct {
	provider string
	vmID     string
}

// run executes one provisioning request and converts its outcome, including
// panics, into a Result. The request is logged and recorded in the
// provisioning log; neither affects the returned Result.
func (s *Service) run(ctx context.Context, mode Mode, provider string, params map[string]any, fn func(*attempt) error) (result *Result) {
	start := time.Now()
	a := &attempt{provider: provider}
	redacted := logging.Redact(params)

	logging.Logger().Info("provisioning request",
		zap.String("mode", string(mode)),
		zap.String("provider", provider),
		zap.Any("params", redacted))

	defer func() {
		if r := recover(); r != nil {
			result = newFailure(fmt.Errorf("construction panicked: %v", r), a.provider, s.now())
		}
		s.finish(ctx, mode, redacted, result, time.Since(start))
	}()

	if err := fn(a); err != nil {
		return newFailure(err, a.provider, s.now())
	}
	return newSuccess(a.vmID, a.provider, s.now())
}

func (s *Service) finish(ctx context.Context, mode Mode, params map[string]any, result *Result, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("mode", string(mode)),
		zap.String("provider", result.Provider()),
		zap.String("status", string(result.Status())),
		zap.Duration("elapsed", elapsed),
	}
	if result.Succeeded() {
		logging.Logger().Info("provisioning succeeded", append(fields, zap.String("vm_id", result.VMID()))...)
	} else {
		logging.Logger().Warn("provisioning failed", append(fields, zap.Error(result.Err()))...)
	}

	s.metrics.ObserveRequest(string(mode), result.Provider(), string(result.Status()), elapsed)

	logRec := resource.Record{
		"log_id":         uuid.NewString(),
		"vm_id":          nil,
		"provider":       result.Provider(),
		"mode":           string(mode),
		"request_params": params,
		"status":         string(result.Status()),
		"error_message":  nil,
		"timestamp":      result.Timestamp().UTC().Format(time.RFC3339Nano),
	}
	if result.VMID() != "" {
		logRec["vm_id"] = result.VMID()
	}
	if msg := result.ErrorMessage(); msg != "" {
		logRec["error_message"] = logging.Truncate(msg)
	}
	if err := s.store.Insert(ctx, store.TableProvisioningLog, logRec); err != nil {
		logging.Logger().Error("failed to write provisioning log",
			zap.String("mode", string(mode)),
			zap.Error(err))
	}
}

// Provision creates a bundle directly through the provider's factory. params
// must contain vm, network and disk objects.
func (s *Service) Provision(ctx context.Context, provider string, params family.Params) *Result {
	return s.run(ctx, ModeDirect, provider, params, func(a *attempt) error {
		p, err := resource.ParseProvider(provider)
		if err != nil {
			return err
		}
		var missing []string
		for _, section := range []string{"vm", "network", "disk"} {
			if params.Map(section) == nil {
				missing = append(missing, section)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrMissingRequiredResource, strings.Join(missing, ", "))
		}
		vmParams, networkParams, diskParams := params.Map("vm"), params.Map("network"), params.Map("disk")

		f, err := s.factory(p)
		if err != nil {
			return err
		}
		bundle := resource.NewBundle(f.CreateVM(vmParams), f.CreateNetwork(networkParams), f.CreateDisk(diskParams))
		return s.persistBundle(ctx, a, bundle)
	})
}

// ProvisionWithBuilder creates a bundle through a fresh builder and director
func (s *Service) ProvisionWithBuilder(ctx context.Context, req PolicyRequest) *Result {
	params := map[string]any{
		"vmType": req.Category,
		"size":   req.Size,
		"region": req.Region,
	}
	// overrides sit at the top level so redaction sees their vm, network and disk sections
	maps.Copy(params, req.Params)
	return s.run(ctx, ModeBuilder, req.Provider, params, func(a *attempt) error {
		bundle, err := s.construct(req)
		if err != nil {
			return err
		}
		return s.persistBundle(ctx, a, bundle)
	})
}

// construct runs builder and director for req without persisting anything
func (s *Service) construct(req PolicyRequest) (*resource.Bundle, error) {
	p, err := resource.ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	category, err := builder.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	b, err := builder.ForProvider(p, family.WithIDGenerator(s.ids), family.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	director := builder.NewDirector(b)
	bundle, err := director.Construct(category, builder.Size(req.Size), req.Region, builder.OptionsFromParams(req.Params))
	if err != nil {
		return nil, err
	}
	if !bundle.IsValid() {
		return nil, ErrInvalidBundle
	}
	return bundle, nil
}

// ProvisionFromPrototype clones the named template and persists the clone
func (s *Service) ProvisionFromPrototype(ctx context.Context, name string) *Result {
	return s.run(ctx, ModePrototype, "", map[string]any{"prototypeName": name}, func(a *attempt) error {
		vm, err := s.registry.Clone(name)
		if err != nil {
			return err
		}
		a.provider = string(vm.Provider())
		if err := s.insert(ctx, store.TableVirtualMachines, vm.Record()); err != nil {
			return err
		}
		a.vmID = vm.ID()
		return nil
	})
}

// ProvisionBatch provisions every request with the builder path on a bounded
// worker pool. Results are returned in request order.
func (s *Service) ProvisionBatch(ctx context.Context, reqs []PolicyRequest) []*Result {
	results := make([]*Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	pool := pond.NewPool(min(s.batchWorkers, len(reqs)))
	for i, req := range reqs {
		pool.Submit(func() {
			results[i] = s.ProvisionWithBuilder(ctx, req)
		})
	}
	pool.StopAndWait()

	logging.Logger().Info("batch provisioning completed", zap.Int("requests", len(reqs)))
	return results
}

func (s *Service) persistBundle(ctx context.Context, a *attempt, bundle *resource.Bundle) error {
	if err := bundle.CheckConsistency(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	a.provider = string(bundle.Provider())

	vmRec, networkRec, diskRec := bundle.Records()
	for _, w := range []struct {
		table string
		rec   resource.Record
	}{
		{store.TableVirtualMachines, vmRec},
		{store.TableNetworks, networkRec},
		{store.TableDisks, diskRec},
	} {
		if err := s.insert(ctx, w.table, w.rec); err != nil {
			return err
		}
	}
	a.vmID = bundle.VM().ID()

	logging.Logger().Debug("bundle persisted",
		zap.String("vm_id", a.vmID),
		zap.String("network_id", bundle.Network().ID()),
		zap.String("disk_id", bundle.Disk().ID()),
		zap.Strings("firewall_rules", logging.TruncateSlice(bundle.Network().FirewallRules(), logging.MaxLogListItems)))
	return nil
}

func (s *Service) insert(ctx context.Context, table string, rec resource.Record) error {
	if err := s.store.Insert(ctx, table, rec); err != nil {
		return &PersistenceError{Table: table, Err: err}
	}
	return nil
}

// RegisterPrototype stores template under name
func (s *Service) RegisterPrototype(name string, template resource.VirtualMachine) error {
	if err := s.registry.Register(name, template); err != nil {
		return err
	}
	s.metrics.SetPrototypes(s.registry.Len())
	logging.Logger().Info("prototype registered",
		zap.String("name", name),
		zap.String("provider", string(template.Provider())),
		zap.String("class", template.Class()))
	return nil
}

// RegisterPrototypeRecord reconstructs a template from its canonical record
// and registers it. A record without vm_id gets a template identifier.
func (s *Service) RegisterPrototypeRecord(name string, rec resource.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: '%s'", prototype.ErrNonCloneableTemplate, name)
	}
	if rec.String("vm_id") == "" {
		rec = maps.Clone(rec)
		if p, err := resource.ParseProvider(rec.String("provider")); err == nil {
			rec["vm_id"] = s.ids.NewID(p, resource.KindVM)
		}
	}
	vm, err := resource.ReconstructVM(rec)
	if err != nil {
		return err
	}
	return s.RegisterPrototype(name, vm)
}

// UnregisterPrototype removes name from the registry
func (s *Service) UnregisterPrototype(name string) error {
	if !s.registry.Unregister(name) {
		return fmt.Errorf("%w: '%s'", prototype.ErrPrototypeNotFound, name)
	}
	s.metrics.SetPrototypes(s.registry.Len())
	logging.Logger().Info("prototype removed", zap.String("name", name))
	return nil
}

// Prototypes returns the registered templates ordered by name
func (s *Service) Prototypes() []prototype.Entry {
	return s.registry.Entries()
}

// GetVM loads and reconstructs a persisted virtual machine
func (s *Service) GetVM(ctx context.Context, vmID string) (resource.VirtualMachine, error) {
	rec, err := s.store.SelectOne(ctx, store.TableVirtualMachines, "vm_id", vmID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("vm '%s': %w", vmID, store.ErrNotFound)
	}
	if err != nil {
		return nil, &PersistenceError{Table: store.TableVirtualMachines, Err: err}
	}
	return resource.ReconstructVM(rec)
}

// ListVMs returns persisted virtual machine records, newest first
func (s *Service) ListVMs(ctx context.Context) ([]resource.Record, error) {
	recs, err := s.store.List(ctx, store.TableVirtualMachines, 0)
	if err != nil {
		return nil, &PersistenceError{Table: store.TableVirtualMachines, Err: err}
	}
	return recs, nil
}

// Logs returns the newest provisioning log records
func (s *Service) Logs(ctx context.Context) ([]resource.Record, error) {
	recs, err := s.store.List(ctx, store.TableProvisioningLog, LogsLimit)
	if err != nil {
		return nil, &PersistenceError{Table: store.TableProvisioningLog, Err: err}
	}
	return recs, nil
}
