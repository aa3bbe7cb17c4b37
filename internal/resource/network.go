package resource

import "time"

// StatusProvisioned is the status recorded for networks and disks
const StatusProvisioned = "provisioned"

// Network is implemented by the four provider-specific network variants
type Network interface {
	ID() string
	Provider() Provider
	Region() string
	FirewallRules() []string
	PublicIP() bool
	// Config holds the provider-specific network identifiers
	Config() Record
	Record() Record
}

// NetworkBase carries the attributes common to all network variants
type NetworkBase struct {
	NetworkID string
	Zone      string
	Rules     []string
	Public    bool
	CreatedAt time.Time
}

func (b NetworkBase) ID() string     { return b.NetworkID }
func (b NetworkBase) Region() string { return b.Zone }
func (b NetworkBase) PublicIP() bool { return b.Public }

// FirewallRules returns a copy of the ordered rule names
func (b NetworkBase) FirewallRules() []string {
	return append([]string{}, b.Rules...)
}

func (b NetworkBase) record(p Provider, config Record) Record {
	return Record{
		"network_id":     b.NetworkID,
		"provider":       string(p),
		"region":         nullable(b.Zone),
		"config":         config,
		"firewall_rules": b.FirewallRules(),
		"public_ip":      b.Public,
		"status":         StatusProvisioned,
		"created_at":     formatTime(b.CreatedAt),
	}
}

// AWSNetwork is a VPC subnet attachment guarded by a security group
type AWSNetwork struct {
	NetworkBase
	VpcID         string
	Subnet        string
	SecurityGroup string
}

func (n *AWSNetwork) Provider() Provider { return ProviderAWS }

func (n *AWSNetwork) Config() Record {
	return Record{"vpcId": nullable(n.VpcID), "subnet": nullable(n.Subnet), "securityGroup": nullable(n.SecurityGroup)}
}

func (n *AWSNetwork) Record() Record { return n.record(ProviderAWS, n.Config()) }

// AzureNetwork is a virtual network subnet guarded by a network security group
type AzureNetwork struct {
	NetworkBase
	VirtualNetwork       string
	SubnetName           string
	NetworkSecurityGroup string
}

func (n *AzureNetwork) Provider() Provider { return ProviderAzure }

func (n *AzureNetwork) Config() Record {
	return Record{
		"virtualNetwork":       nullable(n.VirtualNetwork),
		"subnetName":           nullable(n.SubnetName),
		"networkSecurityGroup": nullable(n.NetworkSecurityGroup),
	}
}

func (n *AzureNetwork) Record() Record { return n.record(ProviderAzure, n.Config()) }

// GCPNetwork is a VPC network/subnetwork pair selected by a firewall tag
type GCPNetwork struct {
	NetworkBase
	NetworkName    string
	SubnetworkName string
	FirewallTag    string
}

func (n *GCPNetwork) Provider() Provider { return ProviderGCP }

func (n *GCPNetwork) Config() Record {
	return Record{
		"networkName":    nullable(n.NetworkName),
		"subnetworkName": nullable(n.SubnetworkName),
		"firewallTag":    nullable(n.FirewallTag),
	}
}

func (n *GCPNetwork) Record() Record { return n.record(ProviderGCP, n.Config()) }

// OnPremiseNetwork is a VLAN on a physical interface
type OnPremiseNetwork struct {
	NetworkBase
	PhysicalInterface string
	VLANID            *int
	FirewallPolicy    string
}

func (n *OnPremiseNetwork) Provider() Provider { return ProviderOnPremise }

func (n *OnPremiseNetwork) Config() Record {
	return Record{
		"physicalInterface": nullable(n.PhysicalInterface),
		"vlanId":            nullableInt(n.VLANID),
		"firewallPolicy":    nullable(n.FirewallPolicy),
	}
}

func (n *OnPremiseNetwork) Record() Record { return n.record(ProviderOnPremise, n.Config()) }
