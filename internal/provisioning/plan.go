package provisioning

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vmforge/internal/logging"
	"vmforge/internal/resource"
)

// Plan is the dry-run outcome of a policy request: the canonical records the
// request would persist and the provider-native request they correspond to.
type Plan struct {
	Provider resource.Provider
	VM       resource.Record
	Network  resource.Record
	Disk     resource.Record
	// Native is an *ec2.RunInstancesInput, a *compute.Instance, cloud-init
	// user-data for on-premise, or nil for Azure.
	Native any
}

// Record renders the plan for transport
func (p *Plan) Record() resource.Record {
	rec := resource.Record{
		"provider": string(p.Provider),
		"vm":       map[string]any(p.VM),
		"network":  map[string]any(p.Network),
		"disk":     map[string]any(p.Disk),
	}
	if p.Native != nil {
		rec["native"] = p.Native
	}
	return rec
}

// Plan runs builder and director for req without touching the store
func (s *Service) Plan(ctx context.Context, req PolicyRequest) (*Plan, error) {
	start := time.Now()
	bundle, err := s.construct(req)
	if err != nil {
		return nil, err
	}
	native, err := renderNative(bundle)
	if err != nil {
		return nil, err
	}
	vm, network, disk := bundle.Records()

	logging.Logger().Debug("planned bundle",
		zap.String("provider", string(bundle.Provider())),
		zap.String("vm_id", bundle.VM().ID()),
		zap.Duration("elapsed", time.Since(start)))

	return &Plan{
		Provider: bundle.Provider(),
		VM:       vm,
		Network:  network,
		Disk:     disk,
		Native:   native,
	}, nil
}
