package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"vmforge/internal/family"
	"vmforge/internal/provisioning"
	"vmforge/internal/resource"
)

// toStruct converts any JSON-encodable value into a protobuf Struct. Values
// are normalized through JSON so typed maps, slices and SDK structs all
// arrive as the plain kinds structpb accepts.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct) resource.Record {
	if s == nil {
		return resource.Record{}
	}
	return resource.Record(s.AsMap())
}

func recordList(recs []resource.Record) []any {
	out := make([]any, len(recs))
	for i, rec := range recs {
		out[i] = map[string]any(rec)
	}
	return out
}

func recordsOf(rec resource.Record, key string) []resource.Record {
	items, _ := rec[key].([]any)
	out := make([]resource.Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, resource.Record(m))
		}
	}
	return out
}

// policyFields is the wire form of a builder request
func policyFields(req provisioning.PolicyRequest) map[string]any {
	fields := map[string]any{
		"provider": req.Provider,
		"vmType":   req.Category,
		"size":     req.Size,
		"region":   req.Region,
	}
	if req.Params != nil {
		fields["params"] = map[string]any(req.Params)
	}
	return fields
}

func parsePolicy(rec resource.Record) provisioning.PolicyRequest {
	req := provisioning.PolicyRequest{
		Provider: rec.String("provider"),
		Category: rec.String("vmType"),
		Size:     rec.String("size"),
		Region:   rec.String("region"),
	}
	if params := rec.Map("params"); params != nil {
		req.Params = family.Params(params)
	}
	return req
}
