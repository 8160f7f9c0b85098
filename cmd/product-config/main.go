// product-config resolves and validates the installer's per-product
// configuration profiles, the same way the installer does at startup.
// Profile authors use it to see the effective configuration a product
// resolves to and to catch storage constraint violations before the
// profile ships.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/osbuild/product-config/internal/product"
	"github.com/osbuild/product-config/internal/productregistry"
)

var (
	configFile  string
	profileDirs []string
	productName string
	overrideArg string
	verbose     bool
)

func newRegistry() (*productregistry.Registry, error) {
	config, err := LoadToolConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("could not load settings file %q: %v", configFile, err)
	}

	dirs := config.ProfileDirs
	if len(profileDirs) > 0 {
		dirs = profileDirs
	}
	logrus.Debugf("Looking for product profiles in %v", dirs)

	reg, err := productregistry.New(dirs...)
	if err != nil {
		return nil, err
	}
	reg.SetDefaultProduct(config.DefaultProduct)

	override := config.LocalOverride
	if overrideArg != "" {
		override = overrideArg
	}
	if override != "" {
		logrus.Debugf("Applying local override %q", override)
		if err := reg.SetLocalOverride(override); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

var listCmd = &cobra.Command{
	Use:          "list",
	Short:        "List all discovered products",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		for _, name := range reg.List() {
			fmt.Println(name)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the effective configuration for a product",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		config, _, err := product.Load(reg, productName)
		if err != nil {
			return err
		}
		return config.Dump(os.Stdout)
	},
}

var validateCmd = &cobra.Command{
	Use:          "validate",
	Short:        "Validate a product's storage configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		config, validated, err := product.Load(reg, productName)
		if validated != nil {
			for _, result := range validated.Rules {
				status := "ok"
				if !result.OK {
					status = "FAIL"
				}
				fmt.Printf("%-4s %s\n", status, result.Rule)
			}
		}
		if err != nil {
			return err
		}
		name, err := config.ProductName()
		if err != nil {
			return err
		}
		logrus.Infof("Product %q validated, scheme %s", name, validated.Scheme)
		return nil
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "product-config",
		Short: "Resolve and validate installer product profiles",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/installer/product-config.toml", "tool settings file")
	rootCmd.PersistentFlags().StringArrayVarP(&profileDirs, "profile-dir", "d", nil, "profile directory, most general first (overrides the settings file)")
	rootCmd.PersistentFlags().StringVarP(&productName, "product", "p", "", "product name (default product when empty)")
	rootCmd.PersistentFlags().StringVarP(&overrideArg, "override", "o", "", "local override profile applied last")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(listCmd, showCmd, validateCmd)

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("%v", err)
	}
}
