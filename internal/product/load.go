package product

import (
	"fmt"

	"github.com/osbuild/product-config/internal/productregistry"
	"github.com/osbuild/product-config/internal/storage"
)

// Load resolves, merges and validates the configuration for the named
// product. It is the one entry point the installer startup path calls;
// any error is terminal and no partial configuration is returned
// alongside one, except the annotated storage config accompanying a
// *storage.ConstraintViolation so the failure path can report which
// rules passed.
func Load(reg *productregistry.Registry, name string) (*EffectiveConfig, *storage.ValidatedConfig, error) {
	chain, err := reg.Resolve(name)
	if err != nil {
		return nil, nil, err
	}

	config := Merge(chain)
	productName, err := config.ProductName()
	if err != nil {
		return nil, nil, err
	}

	rules, err := config.Storage().DefaultPartitioning()
	if err != nil {
		return nil, nil, fmt.Errorf("product %q: %w", productName, err)
	}
	constraints, err := config.Storage().Constraints()
	if err != nil {
		return nil, nil, fmt.Errorf("product %q: %w", productName, err)
	}

	validated, err := storage.Validate(config.Storage().DefaultScheme(), rules, constraints)
	if err != nil {
		return nil, validated, fmt.Errorf("product %q: %w", productName, err)
	}

	return config, validated, nil
}
