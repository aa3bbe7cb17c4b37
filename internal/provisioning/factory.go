package provisioning

import (
	"fmt"

	"vmforge/internal/resource"
)

// renderNative renders the provider-native request for a bundle. Azure has no
// rendering and yields nil.
func renderNative(bundle *resource.Bundle) (any, error) {
	switch bundle.Provider() {
	case resource.ProviderAWS:
		return renderAWS(bundle)
	case resource.ProviderGCP:
		return renderGCP(bundle)
	case resource.ProviderOnPremise:
		userData, err := renderOnPremise(bundle)
		if err != nil {
			return nil, err
		}
		return map[string]string{"userData": userData}, nil
	case resource.ProviderAzure:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", resource.ErrUnsupportedProvider, bundle.Provider())
	}
}
