package product

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osbuild/product-config/internal/productregistry"
	"github.com/osbuild/product-config/internal/unit"
)

func parseChain(t *testing.T, texts ...string) productregistry.Chain {
	t.Helper()
	chain := make(productregistry.Chain, len(texts))
	for i, text := range texts {
		file, err := unit.Parse("chain.conf", strings.NewReader(text))
		require.Nil(t, err)
		chain[i] = file
	}
	return chain
}

func TestMergePrecedence(t *testing.T) {
	chain := parseChain(t,
		"[Storage]\ndefault_scheme = LVM\n",
		"[Storage]\ndefault_scheme = BTRFS\n",
	)
	merged := Merge(chain)
	assert.Equal(t, "BTRFS", merged.Get("Storage", "default_scheme", ""))
}

func TestMergeAdditiveLists(t *testing.T) {
	chain := parseChain(t,
		"[Payload]\nupdates_repositories =\n    a\n    b\n",
		"[Payload]\nupdates_repositories =\n    b\n    c\n",
	)
	merged := Merge(chain)
	assert.Equal(t, []string{"a", "b", "c"}, merged.List("Payload", "updates_repositories"))
}

func TestMergeNonAdditiveListReplaces(t *testing.T) {
	chain := parseChain(t,
		"[User Interface]\nhidden_spokes =\n    NetworkSpoke\n",
		"[User Interface]\nhidden_spokes =\n    PasswordSpoke\n",
	)
	merged := Merge(chain)
	assert.Equal(t, []string{"PasswordSpoke"}, merged.List("User Interface", "hidden_spokes"))
}

func TestMergeUnknownKeysPassThrough(t *testing.T) {
	chain := parseChain(t,
		"[Future Section]\nfuture_key = future value\n",
		"[Storage]\nnot_yet_known = 7\n",
	)
	merged := Merge(chain)
	assert.Equal(t, "future value", merged.Get("Future Section", "future_key", ""))
	assert.Equal(t, "7", merged.Get("Storage", "not_yet_known", ""))
	assert.Equal(t, []string{"Future Section", "Storage"}, merged.Sections())
}

func TestMergeKeysFromBothEntries(t *testing.T) {
	chain := parseChain(t,
		"[Storage]\ndefault_scheme = LVM\nbtrfs_compression = zstd:1\n",
		"[Storage]\ndefault_scheme = LVM_THINP\n",
	)
	merged := Merge(chain)
	assert.Equal(t, "LVM_THINP", merged.Get("Storage", "default_scheme", ""))
	assert.Equal(t, "zstd:1", merged.Get("Storage", "btrfs_compression", ""))
	assert.Equal(t, []string{"default_scheme", "btrfs_compression"}, merged.Keys("Storage"))
}

func TestProductName(t *testing.T) {
	merged := Merge(parseChain(t, "[Product]\nproduct_name = Fedora\n"))
	name, err := merged.ProductName()
	require.Nil(t, err)
	assert.Equal(t, "Fedora", name)

	merged = Merge(parseChain(t, "[Storage]\ndefault_scheme = LVM\n"))
	_, err = merged.ProductName()
	var merr *MissingRequiredKeyError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "Product", merr.Section)
	assert.Equal(t, "product_name", merr.Key)
}

func TestFacadeDefaults(t *testing.T) {
	merged := Merge(parseChain(t, "[Product]\nproduct_name = Minimal\n"))

	assert.Equal(t, "LVM", merged.Storage().DefaultScheme())
	rules, err := merged.Storage().DefaultPartitioning()
	require.Nil(t, err)
	assert.Empty(t, rules)
	constraints, err := merged.Storage().Constraints()
	require.Nil(t, err)
	assert.True(t, constraints.SwapRecommended)

	assert.Equal(t, "", merged.UserInterface().HelpDirectory())
	assert.Empty(t, merged.UserInterface().HiddenSpokes())
	assert.Equal(t, "", merged.UserInterface().CustomStylesheet())
	assert.Equal(t, "CLOSEST_MIRROR", merged.Payload().DefaultSource())
	assert.Equal(t, "", merged.License().EULA())
	assert.False(t, merged.Network().DefaultOnBoot())
	assert.Equal(t, "", merged.Bootloader().EFIDir())
}

func TestFacadeValues(t *testing.T) {
	merged := Merge(parseChain(t, `
[Product]
product_name = Example

[User Interface]
help_directory = /usr/share/help
hidden_spokes =
    NetworkSpoke
custom_stylesheet = /usr/share/example.css

[Payload]
default_source = CDN
default_rpm_gpg_keys =
    /etc/pki/rpm-gpg/KEY

[Network]
default_on_boot = True

[Bootloader]
efi_dir = example
`))

	assert.Equal(t, "/usr/share/help", merged.UserInterface().HelpDirectory())
	assert.Equal(t, []string{"NetworkSpoke"}, merged.UserInterface().HiddenSpokes())
	assert.Equal(t, "/usr/share/example.css", merged.UserInterface().CustomStylesheet())
	assert.Equal(t, "CDN", merged.Payload().DefaultSource())
	assert.Equal(t, []string{"/etc/pki/rpm-gpg/KEY"}, merged.Payload().DefaultRPMGPGKeys())
	assert.True(t, merged.Network().DefaultOnBoot())
	assert.Equal(t, "example", merged.Bootloader().EFIDir())
}

func TestDumpDeterministic(t *testing.T) {
	reg, err := productregistry.New("testdata")
	require.Nil(t, err)

	dump := func() string {
		chain, err := reg.Resolve("Derived OS")
		require.Nil(t, err)
		var b strings.Builder
		require.Nil(t, Merge(chain).Dump(&b))
		return b.String()
	}

	first := dump()
	second := dump()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-resolving produced a different dump:\n%s", diff)
	}
	assert.Contains(t, first, "[Storage]")
	assert.Contains(t, first, "default_scheme = LVM_THINP")
}

func TestLoad(t *testing.T) {
	reg, err := productregistry.New("testdata")
	require.Nil(t, err)

	config, validated, err := Load(reg, "Derived OS")
	require.Nil(t, err)
	assert.True(t, validated.Valid)
	assert.Equal(t, "LVM_THINP", validated.Scheme)

	name, err := config.ProductName()
	require.Nil(t, err)
	assert.Equal(t, "Derived OS", name)

	// inherited from the base product
	assert.Equal(t, "/usr/share/base-release/EULA", config.License().EULA())
	// additive across the chain
	assert.Equal(t, []string{"updates", "updates-testing"}, config.Payload().UpdatesRepositories())
}

func TestLoadConstraintViolations(t *testing.T) {
	reg, err := productregistry.New("testdata")
	require.Nil(t, err)

	_, validated, err := Load(reg, "Broken OS")
	require.NotNil(t, err)
	require.NotNil(t, validated)
	assert.False(t, validated.Valid)
	assert.Contains(t, err.Error(), "unsupported root scheme")
	assert.Contains(t, err.Error(), "below minimum required size")
}

func TestLoadUnknownProduct(t *testing.T) {
	reg, err := productregistry.New("testdata")
	require.Nil(t, err)

	_, _, err = Load(reg, "Nope")
	var uerr *productregistry.UnknownProductError
	assert.ErrorAs(t, err, &uerr)
}
