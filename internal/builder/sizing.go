package builder

import (
	"errors"
	"fmt"
	"strings"

	"vmforge/internal/resource"
)

var ErrUnsupportedCategory = errors.New("unsupported vm category")

// Category is the shaping intent of a virtual machine
type Category string

const (
	CategoryStandard         Category = "standard"
	CategoryMemoryOptimized  Category = "memory-optimized"
	CategoryComputeOptimized Category = "compute-optimized"
)

// Categories returns all supported categories
func Categories() []Category {
	return []Category{CategoryStandard, CategoryMemoryOptimized, CategoryComputeOptimized}
}

// ParseCategory parses a category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryStandard, CategoryMemoryOptimized, CategoryComputeOptimized:
		return c, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnsupportedCategory, s)
}

// Size is a size tier. Unknown tiers are treated as SizeSmall.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Sizes returns all known size tiers
func Sizes() []Size {
	return []Size{SizeSmall, SizeMedium, SizeLarge}
}

// Shape is the compute shape selected by the sizing table
type Shape struct {
	InstanceType string
	VCPUs        int
	MemoryGB     int
}

type sizeTable map[Size]Shape

var sizing = map[Category]map[resource.Provider]sizeTable{
	CategoryStandard: {
		resource.ProviderAWS: {
			SizeSmall:  {"t3.medium", 2, 4},
			SizeMedium: {"m5.large", 2, 8},
			SizeLarge:  {"m5.xlarge", 4, 16},
		},
		resource.ProviderAzure: {
			SizeSmall:  {"D2s_v3", 2, 8},
			SizeMedium: {"D4s_v3", 4, 16},
			SizeLarge:  {"D8s_v3", 8, 32},
		},
		resource.ProviderGCP: {
			SizeSmall:  {"e2-standard-2", 2, 8},
			SizeMedium: {"e2-standard-4", 4, 16},
			SizeLarge:  {"e2-standard-8", 8, 32},
		},
		resource.ProviderOnPremise: {
			SizeSmall:  {"onprem-std1", 2, 4},
			SizeMedium: {"onprem-std2", 4, 8},
			SizeLarge:  {"onprem-std3", 8, 16},
		},
	},
	CategoryMemoryOptimized: {
		resource.ProviderAWS: {
			SizeSmall:  {"r5.large", 2, 16},
			SizeMedium: {"r5.xlarge", 4, 32},
			SizeLarge:  {"r5.2xlarge", 8, 64},
		},
		resource.ProviderAzure: {
			SizeSmall:  {"E2s_v3", 2, 16},
			SizeMedium: {"E4s_v3", 4, 32},
			SizeLarge:  {"E8s_v3", 8, 64},
		},
		resource.ProviderGCP: {
			SizeSmall:  {"n2-highmem-2", 2, 16},
			SizeMedium: {"n2-highmem-4", 4, 32},
			SizeLarge:  {"n2-highmem-8", 8, 64},
		},
		resource.ProviderOnPremise: {
			SizeSmall:  {"onprem-mem1", 2, 16},
			SizeMedium: {"onprem-mem2", 4, 32},
			SizeLarge:  {"onprem-mem3", 8, 64},
		},
	},
	CategoryComputeOptimized: {
		resource.ProviderAWS: {
			SizeSmall:  {"c5.large", 2, 4},
			SizeMedium: {"c5.xlarge", 4, 8},
			SizeLarge:  {"c5.2xlarge", 8, 16},
		},
		resource.ProviderAzure: {
			SizeSmall:  {"F2s_v2", 2, 4},
			SizeMedium: {"F4s_v2", 4, 8},
			SizeLarge:  {"F8s_v2", 8, 16},
		},
		resource.ProviderGCP: {
			SizeSmall:  {"n2-highcpu-2", 2, 2},
			SizeMedium: {"n2-highcpu-4", 4, 4},
			SizeLarge:  {"n2-highcpu-8", 8, 8},
		},
		resource.ProviderOnPremise: {
			SizeSmall:  {"onprem-cpu1", 2, 2},
			SizeMedium: {"onprem-cpu2", 4, 4},
			SizeLarge:  {"onprem-cpu3", 8, 8},
		},
	},
}

// Lookup returns the shape for a provider, category and size tier. An
// unknown size falls back to the small tier of the same provider and category.
func Lookup(p resource.Provider, c Category, s Size) (Shape, error) {
	byProvider, ok := sizing[c]
	if !ok {
		return Shape{}, fmt.Errorf("%w: '%s'", ErrUnsupportedCategory, c)
	}
	table, ok := byProvider[p]
	if !ok {
		return Shape{}, fmt.Errorf("%w: '%s'", resource.ErrUnsupportedProvider, p)
	}
	if shape, ok := table[Size(strings.ToLower(string(s)))]; ok {
		return shape, nil
	}
	return table[SizeSmall], nil
}

// DefaultDiskSize returns the disk capacity in GB used when none is supplied.
// Compute-optimized keeps 150 GB as in the reference tables.
func DefaultDiskSize(c Category) int {
	switch c {
	case CategoryMemoryOptimized:
		return 200
	case CategoryComputeOptimized:
		return 150
	default:
		return 100
	}
}
