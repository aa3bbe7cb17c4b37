package provisioning

import (
	"bytes"
	"fmt"
	"text/template"

	"vmforge/internal/resource"
)

const cloudConfigTemplate = `#cloud-config
hostname: {{.Hostname}}
ssh_pwauth: no
{{- if .KeyPairName}}
users:
  - name: vmforge
    sudo: ALL=(ALL) NOPASSWD:ALL
    shell: /bin/bash
    ssh_import_id:
      - "{{.KeyPairName}}"
{{- end}}
write_files:
  - path: /etc/vmforge/placement
    content: |
      hypervisor={{.Hypervisor}}
      datacenter={{.Datacenter}}
      interface={{.Interface}}
      vlan={{.VLAN}}
      storage_pool={{.StoragePool}}
      raid_level={{.RaidLevel}}
      size_gb={{.SizeGB}}`

// CloudConfigData represents the data for cloud-config template
type CloudConfigData struct {
	Hostname    string
	KeyPairName string
	Hypervisor  string
	Datacenter  string
	Interface   string
	VLAN        string
	StoragePool string
	RaidLevel   string
	SizeGB      int
}

// GenerateCloudConfig generates cloud-config user-data from template
func GenerateCloudConfig(data CloudConfigData) (string, error) {
	tmpl, err := template.New("cloud-config").Parse(cloudConfigTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse cloud-config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute cloud-config template: %w", err)
	}

	return buf.String(), nil
}

// renderOnPremise returns the cloud-init user-data for an on-premise bundle
func renderOnPremise(bundle *resource.Bundle) (string, error) {
	vm, ok := bundle.VM().(*resource.OnPremiseVirtualMachine)
	if !ok {
		return "", fmt.Errorf("%w: expected an onpremise virtual machine", ErrInvalidBundle)
	}
	network, ok := bundle.Network().(*resource.OnPremiseNetwork)
	if !ok {
		return "", fmt.Errorf("%w: expected an onpremise network", ErrInvalidBundle)
	}
	disk, ok := bundle.Disk().(*resource.OnPremiseDisk)
	if !ok {
		return "", fmt.Errorf("%w: expected an onpremise disk", ErrInvalidBundle)
	}

	vlan := ""
	if network.VLANID != nil {
		vlan = fmt.Sprint(*network.VLANID)
	}
	return GenerateCloudConfig(CloudConfigData{
		Hostname:    vm.ID(),
		KeyPairName: vm.KeyPairName,
		Hypervisor:  vm.Hypervisor,
		Datacenter:  vm.Datacenter,
		Interface:   network.PhysicalInterface,
		VLAN:        vlan,
		StoragePool: disk.StoragePool,
		RaidLevel:   disk.RaidLevel,
		SizeGB:      disk.SizeGB(),
	})
}
