package sites

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marminbh/indexpush-svc/internal/models"
)

// siteFile is the on-disk format:
//
//	sites:
//	  - name: website
//	    rootPath: /sitecore/content
//	    startItem: /home
//	    hostName: www.example.com
type siteFile struct {
	Sites []map[string]string `yaml:"sites"`
}

// LoadFile reads site definitions from a YAML file, keeping file order
func LoadFile(path string) ([]models.SiteInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sites file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads site definitions from YAML
func Decode(r io.Reader) ([]models.SiteInfo, error) {
	var file siteFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode sites file: %w", err)
	}

	infos := make([]models.SiteInfo, 0, len(file.Sites))
	for i, props := range file.Sites {
		if props[models.SitePropertyName] == "" {
			return nil, fmt.Errorf("site #%d has no name", i+1)
		}
		infos = append(infos, models.NewSiteInfo(props))
	}
	return infos, nil
}
