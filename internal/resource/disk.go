package resource

import "time"

// Disk is implemented by the four provider-specific disk variants
type Disk interface {
	ID() string
	Provider() Provider
	SizeGB() int
	Region() string
	// IOPS returns the provisioned IOPS, or nil when not set
	IOPS() *int
	// Config holds the provider-specific storage class attributes
	Config() Record
	Record() Record
}

// DiskBase carries the attributes common to all disk variants
type DiskBase struct {
	DiskID    string
	Capacity  int
	Zone      string
	IOPSLimit *int
	CreatedAt time.Time
}

func (b DiskBase) ID() string     { return b.DiskID }
func (b DiskBase) SizeGB() int    { return b.Capacity }
func (b DiskBase) Region() string { return b.Zone }

func (b DiskBase) IOPS() *int {
	if b.IOPSLimit == nil {
		return nil
	}
	v := *b.IOPSLimit
	return &v
}

func (b DiskBase) record(p Provider, config Record) Record {
	return Record{
		"disk_id":    b.DiskID,
		"provider":   string(p),
		"size_gb":    b.Capacity,
		"region":     nullable(b.Zone),
		"config":     config,
		"iops":       nullableInt(b.IOPSLimit),
		"status":     StatusProvisioned,
		"created_at": formatTime(b.CreatedAt),
	}
}

// AWSDisk is an EBS volume
type AWSDisk struct {
	DiskBase
	VolumeType string
	Encrypted  bool
}

func (d *AWSDisk) Provider() Provider { return ProviderAWS }

func (d *AWSDisk) Config() Record {
	return Record{"volumeType": nullable(d.VolumeType), "encrypted": d.Encrypted}
}

func (d *AWSDisk) Record() Record { return d.record(ProviderAWS, d.Config()) }

// AzureDisk is a managed or unmanaged Azure disk
type AzureDisk struct {
	DiskBase
	DiskSku     string
	ManagedDisk bool
}

func (d *AzureDisk) Provider() Provider { return ProviderAzure }

func (d *AzureDisk) Config() Record {
	return Record{"diskSku": nullable(d.DiskSku), "managedDisk": d.ManagedDisk}
}

func (d *AzureDisk) Record() Record { return d.record(ProviderAzure, d.Config()) }

// GCPDisk is a persistent disk
type GCPDisk struct {
	DiskBase
	DiskType   string
	AutoDelete bool
}

func (d *GCPDisk) Provider() Provider { return ProviderGCP }

func (d *GCPDisk) Config() Record {
	return Record{"diskType": nullable(d.DiskType), "autoDelete": d.AutoDelete}
}

func (d *GCPDisk) Record() Record { return d.record(ProviderGCP, d.Config()) }

// OnPremiseDisk is a volume carved from a storage pool
type OnPremiseDisk struct {
	DiskBase
	StoragePool string
	RaidLevel   string
}

func (d *OnPremiseDisk) Provider() Provider { return ProviderOnPremise }

func (d *OnPremiseDisk) Config() Record {
	return Record{"storagePool": nullable(d.StoragePool), "raidLevel": nullable(d.RaidLevel)}
}

func (d *OnPremiseDisk) Record() Record { return d.record(ProviderOnPremise, d.Config()) }
