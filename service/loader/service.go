// Package loader fetches and parses user-program listings. Listings are
// plain-text assets addressable with any URL scheme the virtual file system
// understands, including file, mem and cloud storage locations.
package loader

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/gokern/model/program"
)

// Service loads program images from a virtual file system.
type Service struct {
	fs      afs.Service
	baseURL string
}

// Option customises the loader.
type Option func(*Service)

// WithBaseURL sets the base location relative program URLs resolve against.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

// New creates a loader service.
func New(opts ...Option) *Service {
	ret := &Service{fs: afs.New()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Load fetches the listing at the supplied URL and parses it into a
// validated program image. A relative URL joins the loader's base location.
func (s *Service) Load(ctx context.Context, URL string) (*program.Image, error) {
	location := URL
	if s.baseURL != "" && !strings.Contains(URL, "://") {
		location = url.Join(s.baseURL, URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %v, %w", location, err)
	}
	image, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program: %v, %w", location, err)
	}
	if image.Name == "" {
		name := path.Base(location)
		image.Name = strings.TrimSuffix(name, path.Ext(name))
	}
	image.Source = location
	if err = image.Validate(); err != nil {
		return nil, err
	}
	return image, nil
}
