package product

import (
	"github.com/osbuild/product-config/internal/common"
	"github.com/osbuild/product-config/internal/partition"
	"github.com/osbuild/product-config/internal/storage"
)

// Typed accessors over the merged configuration. Absent keys yield the
// documented defaults; downstream subsystems never touch raw sections.

type StorageSection struct {
	config *EffectiveConfig
}

func (c *EffectiveConfig) Storage() StorageSection {
	return StorageSection{c}
}

// DefaultScheme returns the partitioning scheme, "LVM" when unset.
func (s StorageSection) DefaultScheme() string {
	return s.config.Get("Storage", "default_scheme", "LVM")
}

// DefaultPartitioning returns the parsed default layout rules in source
// order.
func (s StorageSection) DefaultPartitioning() ([]partition.Rule, error) {
	return partition.ParseRules(s.config.List("Storage", "default_partitioning"))
}

// Constraints returns the parsed [Storage Constraints] section.
func (s StorageSection) Constraints() (storage.Constraints, error) {
	return storage.ParseConstraints(s.config.section("Storage Constraints"))
}

type UserInterfaceSection struct {
	config *EffectiveConfig
}

func (c *EffectiveConfig) UserInterface() UserInterfaceSection {
	return UserInterfaceSection{c}
}

func (s UserInterfaceSection) HelpDirectory() string {
	return s.config.Get("User Interface", "help_directory", "")
}

func (s UserInterfaceSection) HiddenSpokes() []string {
	return s.config.List("User Interface", "hidden_spokes")
}

func (s UserInterfaceSection) DefaultHelpPages() []string {
	return s.config.List("User Interface", "default_help_pages")
}

func (s UserInterfaceSection) CustomStylesheet() string {
	return s.config.Get("User Interface", "custom_stylesheet", "")
}

type PayloadSection struct {
	config *EffectiveConfig
}

func (c *EffectiveConfig) Payload() PayloadSection {
	return PayloadSection{c}
}

// DefaultSource returns the payload source token, CLOSEST_MIRROR when
// unset.
func (s PayloadSection) DefaultSource() string {
	return s.config.Get("Payload", "default_source", "CLOSEST_MIRROR")
}

func (s PayloadSection) DefaultRPMGPGKeys() []string {
	return s.config.List("Payload", "default_rpm_gpg_keys")
}

func (s PayloadSection) UpdatesRepositories() []string {
	return s.config.List("Payload", "updates_repositories")
}

type LicenseSection struct {
	config *EffectiveConfig
}

func (c *EffectiveConfig) License() LicenseSection {
	return LicenseSection{c}
}

// EULA returns the license path, empty when the product ships none.
func (s LicenseSection) EULA() string {
	return s.config.Get("License", "eula", "")
}

type NetworkSection struct {
	config *EffectiveConfig
}

func (c *EffectiveConfig) Network() NetworkSection {
	return NetworkSection{c}
}

// DefaultOnBoot reports whether network devices activate on boot by
// default; false when unset or unparseable.
func (s NetworkSection) DefaultOnBoot() bool {
	value, err := common.ParseBool(s.config.Get("Network", "default_on_boot", "False"))
	if err != nil {
		return false
	}
	return value
}

type BootloaderSection struct {
	config *EffectiveConfig
}

func (c *EffectiveConfig) Bootloader() BootloaderSection {
	return BootloaderSection{c}
}

func (s BootloaderSection) EFIDir() string {
	return s.config.Get("Bootloader", "efi_dir", "")
}
