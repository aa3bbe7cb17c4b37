package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"vmforge/internal/provisioning"
	"vmforge/internal/resource"
)

// Client calls the provisioning service over an established connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client on cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, req map[string]any) (resource.Record, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return fromStruct(out), nil
}

// Provision creates a bundle directly from vm, network and disk params
func (c *Client) Provision(ctx context.Context, provider string, params map[string]any) (resource.Record, error) {
	return c.call(ctx, "Provision", map[string]any{"provider": provider, "params": params})
}

// ProvisionWithBuilder creates a bundle from a category and size
func (c *Client) ProvisionWithBuilder(ctx context.Context, req provisioning.PolicyRequest) (resource.Record, error) {
	return c.call(ctx, "ProvisionWithBuilder", policyFields(req))
}

// ProvisionFromPrototype clones a registered template
func (c *Client) ProvisionFromPrototype(ctx context.Context, name string) (resource.Record, error) {
	return c.call(ctx, "ProvisionFromPrototype", map[string]any{"name": name})
}

// ProvisionBatch provisions several builder requests, returning results in order
func (c *Client) ProvisionBatch(ctx context.Context, reqs []provisioning.PolicyRequest) ([]resource.Record, error) {
	items := make([]any, len(reqs))
	for i, req := range reqs {
		items[i] = policyFields(req)
	}
	out, err := c.call(ctx, "ProvisionBatch", map[string]any{"requests": items})
	if err != nil {
		return nil, err
	}
	return recordsOf(out, "results"), nil
}

// Plan renders a builder request without provisioning it
func (c *Client) Plan(ctx context.Context, req provisioning.PolicyRequest) (resource.Record, error) {
	return c.call(ctx, "Plan", policyFields(req))
}

// RegisterPrototype registers template, given as a virtual machine record, under name
func (c *Client) RegisterPrototype(ctx context.Context, name string, template map[string]any) error {
	_, err := c.call(ctx, "RegisterPrototype", map[string]any{"name": name, "template": template})
	return err
}

// ListPrototypes returns the registered templates ordered by name
func (c *Client) ListPrototypes(ctx context.Context) ([]resource.Record, error) {
	out, err := c.call(ctx, "ListPrototypes", map[string]any{})
	if err != nil {
		return nil, err
	}
	return recordsOf(out, "prototypes"), nil
}

// RemovePrototype unregisters name
func (c *Client) RemovePrototype(ctx context.Context, name string) error {
	_, err := c.call(ctx, "RemovePrototype", map[string]any{"name": name})
	return err
}

// GetVM returns the persisted record of vmID
func (c *Client) GetVM(ctx context.Context, vmID string) (resource.Record, error) {
	out, err := c.call(ctx, "GetVM", map[string]any{"vmId": vmID})
	if err != nil {
		return nil, err
	}
	return out.Map("vm"), nil
}

// ListVMs returns every persisted virtual machine, newest first
func (c *Client) ListVMs(ctx context.Context) ([]resource.Record, error) {
	out, err := c.call(ctx, "ListVMs", map[string]any{})
	if err != nil {
		return nil, err
	}
	return recordsOf(out, "vms"), nil
}

// Logs returns the newest provisioning log records
func (c *Client) Logs(ctx context.Context) ([]resource.Record, error) {
	out, err := c.call(ctx, "Logs", map[string]any{})
	if err != nil {
		return nil, err
	}
	return recordsOf(out, "logs"), nil
}
