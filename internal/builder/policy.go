package builder

import (
	"vmforge/internal/family"
	"vmforge/internal/resource"
)

var networkDefaults = map[resource.Provider]family.Params{
	resource.ProviderAWS: {
		"vpcId":         "vpc-default",
		"subnet":        "10.0.0.0/24",
		"securityGroup": "sg-default",
	},
	resource.ProviderAzure: {
		"virtualNetwork":       "default-vnet",
		"subnetName":           "default-subnet",
		"networkSecurityGroup": "default-nsg",
	},
	resource.ProviderGCP: {
		"networkName":    "default",
		"subnetworkName": "default",
		"firewallTag":    "default-tag",
	},
	resource.ProviderOnPremise: {
		"physicalInterface": "eth0",
		"vlanId":            100,
		"firewallPolicy":    "default-policy",
	},
}

var diskDefaults = map[resource.Provider]family.Params{
	resource.ProviderAWS: {
		"volumeType": "gp3",
		"encrypted":  true,
	},
	resource.ProviderAzure: {
		"diskSku":     "Standard_LRS",
		"managedDisk": true,
	},
	resource.ProviderGCP: {
		"diskType":   "pd-standard",
		"autoDelete": true,
	},
	resource.ProviderOnPremise: {
		"storagePool": "default-pool",
		"raidLevel":   "RAID5",
	},
}

// NetworkDefaults returns the provider's baseline network attributes with the
// caller's values applied field by field. Only keys the provider defines are
// returned.
func NetworkDefaults(p resource.Provider, overrides family.Params) family.Params {
	return applyDefaults(networkDefaults[p], overrides)
}

// DiskDefaults returns the provider's baseline disk attributes with the
// caller's values applied field by field. An explicit false replaces a true
// default.
func DiskDefaults(p resource.Provider, overrides family.Params) family.Params {
	return applyDefaults(diskDefaults[p], overrides)
}

func applyDefaults(defaults, overrides family.Params) family.Params {
	out := defaults.Clone()
	for k := range defaults {
		if v, ok := overrides[k]; ok && !blank(v) {
			out[k] = v
		}
	}
	return out
}

// blank reports values that do not override a default: nil, the empty string
// and numeric zero. Booleans always override.
func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}
