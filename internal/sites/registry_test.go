package sites

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marminbh/indexpush-svc/internal/models"
)

func site(name, rootPath, startItem string) models.SiteInfo {
	return models.NewSiteInfo(map[string]string{
		"name":      name,
		"rootPath":  rootPath,
		"startItem": startItem,
	})
}

func TestRegistryLastMatchWins(t *testing.T) {
	registry := NewRegistry([]models.SiteInfo{
		site("a", "/", "x"),
		site("b", "/x", "/y"),
	})

	// "/x" and "/x/y" both prefix /x/y/z; the later registration wins
	got, ok := registry.Resolve("/x/y/z")
	require.True(t, ok)
	assert.Equal(t, "b", got.Info.Name)
	assert.Equal(t, "/x/y", got.Key)

	got, ok = registry.Resolve("/x/other")
	require.True(t, ok)
	assert.Equal(t, "a", got.Info.Name)
}

func TestRegistryLaterGenericSiteShadowsSpecific(t *testing.T) {
	// Registration order decides, not prefix length
	registry := NewRegistry([]models.SiteInfo{
		site("specific", "/sitecore/content", "/home/shop"),
		site("generic", "/sitecore/content", "/home"),
	})

	got, ok := registry.Resolve("/sitecore/content/home/shop/item")
	require.True(t, ok)
	assert.Equal(t, "generic", got.Info.Name)
}

func TestRegistryResolveIgnoresCase(t *testing.T) {
	registry := NewRegistry([]models.SiteInfo{
		site("website", "/sitecore/content", "/Home"),
	})

	got, ok := registry.Resolve("/Sitecore/Content/home/About Us")
	require.True(t, ok)
	assert.Equal(t, "website", got.Info.Name)
}

func TestRegistryNoMatch(t *testing.T) {
	registry := NewRegistry([]models.SiteInfo{
		site("website", "/sitecore/content", "/home"),
	})

	_, ok := registry.Resolve("/sitecore/media library/images")
	assert.False(t, ok)

	_, ok = NewRegistry(nil).Resolve("/sitecore/content/home")
	assert.False(t, ok)
}

func TestRegistrySkipsIncompleteSites(t *testing.T) {
	registry := NewRegistry([]models.SiteInfo{
		site("shell", "/sitecore/content", ""),
		site("login", "", "/login"),
		site("website", "/sitecore/content", "/home"),
	})

	require.Equal(t, 1, registry.Len())
	assert.Equal(t, "website", registry.Sites()[0].Info.Name)
}

func TestDecode(t *testing.T) {
	infos, err := Decode(strings.NewReader(`
sites:
  - name: website
    rootPath: /sitecore/content
    startItem: /home
    hostName: www.example.com
    languageEmbedding: never
  - name: shop
    rootPath: /sitecore/content
    startItem: /shop
    hostName: shop.example.com|shop.example.org
`))
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "website", infos[0].Name)
	assert.Equal(t, "/sitecore/content/home", infos[0].StartPath())
	assert.Equal(t, "shop", infos[1].Name)
	assert.Equal(t, "shop.example.com", infos[1].HostName())
}

func TestDecodeRejectsNamelessSite(t *testing.T) {
	_, err := Decode(strings.NewReader(`
sites:
  - rootPath: /sitecore/content
    startItem: /home
`))
	require.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	infos, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, infos)
}
