// Package server exposes the provisioning service over gRPC and serves
// Prometheus metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"vmforge/internal/builder"
	"vmforge/internal/config"
	"vmforge/internal/logging"
	"vmforge/internal/metrics"
	"vmforge/internal/prototype"
	"vmforge/internal/provisioning"
	"vmforge/internal/resource"
	"vmforge/internal/store"
)

// Server implements ProvisioningServer on top of a provisioning.Service
type Server struct {
	service *provisioning.Service
	metrics *metrics.Metrics
}

// NewServer creates a Server. m may be nil, in which case no metrics
// endpoint is started.
func NewServer(svc *provisioning.Service, m *metrics.Metrics) *Server {
	return &Server{service: svc, metrics: m}
}

// Provision implements the Provision RPC
func (s *Server) Provision(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := fromStruct(req)
	result := s.service.Provision(ctx, in.String("provider"), paramsOf(in))
	return toStruct(result.Record())
}

// ProvisionWithBuilder implements the ProvisionWithBuilder RPC
func (s *Server) ProvisionWithBuilder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result := s.service.ProvisionWithBuilder(ctx, parsePolicy(fromStruct(req)))
	return toStruct(result.Record())
}

// ProvisionFromPrototype implements the ProvisionFromPrototype RPC
func (s *Server) ProvisionFromPrototype(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result := s.service.ProvisionFromPrototype(ctx, fromStruct(req).String("name"))
	return toStruct(result.Record())
}

// ProvisionBatch implements the ProvisionBatch RPC
func (s *Server) ProvisionBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	items := recordsOf(fromStruct(req), "requests")
	if len(items) == 0 {
		return nil, status.Error(codes.InvalidArgument, "batch must have at least one request")
	}
	reqs := make([]provisioning.PolicyRequest, len(items))
	for i, item := range items {
		reqs[i] = parsePolicy(item)
	}

	results := s.service.ProvisionBatch(ctx, reqs)
	out := make([]any, len(results))
	for i, result := range results {
		out[i] = map[string]any(result.Record())
	}
	return toStruct(map[string]any{"results": out})
}

// Plan implements the Plan RPC
func (s *Server) Plan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	plan, err := s.service.Plan(ctx, parsePolicy(fromStruct(req)))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(plan.Record())
}

// RegisterPrototype implements the RegisterPrototype RPC
func (s *Server) RegisterPrototype(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := fromStruct(req)
	name := in.String("name")
	if err := s.service.RegisterPrototypeRecord(name, in.Map("template")); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"name": name})
}

// ListPrototypes implements the ListPrototypes RPC
func (s *Server) ListPrototypes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entries := s.service.Prototypes()
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{"name": e.Name, "template": map[string]any(e.Template.Record())}
	}
	return toStruct(map[string]any{"prototypes": out})
}

// RemovePrototype implements the RemovePrototype RPC
func (s *Server) RemovePrototype(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := fromStruct(req).String("name")
	if err := s.service.UnregisterPrototype(name); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"name": name})
}

// GetVM implements the GetVM RPC
func (s *Server) GetVM(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	vm, err := s.service.GetVM(ctx, fromStruct(req).String("vmId"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"vm": map[string]any(vm.Record())})
}

// ListVMs implements the ListVMs RPC
func (s *Server) ListVMs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	vms, err := s.service.ListVMs(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"vms": recordList(vms)})
}

// Logs implements the Logs RPC
func (s *Server) Logs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logs, err := s.service.Logs(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"logs": recordList(logs)})
}

func paramsOf(rec resource.Record) map[string]any {
	if params := rec.Map("params"); params != nil {
		return params
	}
	return map[string]any{}
}

// toStatus maps service errors onto gRPC status codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, prototype.ErrPrototypeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, resource.ErrUnsupportedProvider),
		errors.Is(err, builder.ErrUnsupportedCategory),
		errors.Is(err, prototype.ErrNonCloneableTemplate),
		errors.Is(err, prototype.ErrInvalidName),
		errors.Is(err, provisioning.ErrMissingRequiredResource),
		errors.Is(err, provisioning.ErrInvalidBundle):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// logRequests logs every RPC with its duration and resulting code
func logRequests(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logging.Logger().Debug("rpc handled",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("elapsed", time.Since(start)))
	return resp, err
}

// Start serves gRPC on cfg.Port and, when metrics are enabled and
// cfg.MetricsPort is set, the Prometheus endpoint on cfg.MetricsPort. It
// blocks until the gRPC server stops.
func (s *Server) Start(cfg config.ServerConfig) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if s.metrics != nil && cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		metricsServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logging.Logger().Info("Starting metrics server", zap.Int("port", cfg.MetricsPort))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Logger().Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(logRequests))
	RegisterProvisioningServer(grpcServer, s)

	logging.Logger().Info("Starting gRPC server", zap.Int("port", cfg.Port))
	return grpcServer.Serve(lis)
}
