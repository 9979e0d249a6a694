package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

// DefaultStreamHost serves class previews when no customer subdomain is configured.
const DefaultStreamHost = "customer-bvw30n7zlfevs367.cloudflarestream.com"

const streamHostSuffix = ".cloudflarestream.com"

// Class is a class record in one locale.
type Class struct {
	Slug            string
	Group           string
	Title           string
	Subtitle        string
	Description     string
	Benefits        []string
	DurationMinutes int
	Heat            string
	Intensity       string
	Image           string
	StreamID        string
	IframeSrc       string
	FallbackVideo   string
}

// HasStream reports whether the class has a video stream.
func (c Class) HasStream() bool {
	return c.StreamID != ""
}

// ThumbnailURL returns the stream poster image, or the class image when there is no stream.
func (c Class) ThumbnailURL(host string) string {
	if c.StreamID == "" {
		return c.Image
	}
	return fmt.Sprintf("https://%s/%s/thumbnails/thumbnail.jpg?height=600", host, c.StreamID)
}

// ClassGroup is a class format with its classes in catalog order.
type ClassGroup struct {
	Slug        string
	Title       string
	Description string
	Classes     []Class
}

// StreamConfig controls how class stream URLs are built.
type StreamConfig struct {
	// CustomerSubdomain is the Cloudflare Stream customer host; the
	// .cloudflarestream.com suffix is optional.
	CustomerSubdomain string
	// Override returns a configured STREAM_ID or IFRAME_URL for a stream env
	// base, or "" when there is none.
	Override func(base, kind string) string
}

// Host returns the stream host derived from the customer subdomain.
func (c StreamConfig) Host() string {
	raw := strings.TrimSpace(c.CustomerSubdomain)
	if raw == "" {
		return DefaultStreamHost
	}
	if strings.HasSuffix(raw, streamHostSuffix) {
		return raw
	}
	return raw + streamHostSuffix
}

func (c StreamConfig) override(base, kind string) string {
	if c.Override == nil {
		return ""
	}
	return strings.TrimSpace(c.Override(base, kind))
}

// SetStreamConfig replaces the stream settings used by subsequent lookups.
func (s *Store) SetStreamConfig(cfg StreamConfig) {
	s.streams.Store(&cfg)
}

// StreamConfig returns the active stream settings.
func (s *Store) StreamConfig() StreamConfig {
	return *s.streams.Load()
}

type catalog struct {
	Groups  []string                    `yaml:"groups"`
	Classes []classStatic               `yaml:"classes"`
	Copy    map[i18n.Locale]catalogCopy `yaml:"copy"`

	bySlug map[string]classStatic
}

type classStatic struct {
	Slug            string      `yaml:"slug"`
	Group           string      `yaml:"group"`
	DurationMinutes int         `yaml:"duration_minutes"`
	Heat            string      `yaml:"heat"`
	Intensity       string      `yaml:"intensity"`
	Image           string      `yaml:"image"`
	Video           videoConfig `yaml:"video"`
}

type videoConfig struct {
	Source           string `yaml:"source"`
	StreamEnvBase    string `yaml:"stream_env_base"`
	FallbackStreamID string `yaml:"fallback_stream_id"`
	FallbackVideo    string `yaml:"fallback_video"`
}

type catalogCopy struct {
	Groups  map[string]groupCopy `yaml:"groups"`
	Classes map[string]classCopy `yaml:"classes"`
}

type groupCopy struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type classCopy struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	Description string   `yaml:"description"`
	Benefits    []string `yaml:"benefits"`
}

func (c *catalog) index() {
	c.bySlug = make(map[string]classStatic, len(c.Classes))
	for _, cls := range c.Classes {
		c.bySlug[cls.Slug] = cls
	}
}

func (c *catalog) validate() error {
	groups := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		groups[g] = true
	}
	seen := make(map[string]bool, len(c.Classes))
	for _, cls := range c.Classes {
		if seen[cls.Slug] {
			return contentError(fmt.Errorf("duplicate class slug %q", cls.Slug), "classes.yaml")
		}
		seen[cls.Slug] = true
		if !groups[cls.Group] {
			return contentError(fmt.Errorf("class %q references unknown group %q", cls.Slug, cls.Group), "classes.yaml")
		}
	}
	for _, locale := range i18n.Locales {
		cp, ok := c.Copy[locale]
		if !ok {
			return contentError(fmt.Errorf("missing class copy for %s", locale), "classes.yaml")
		}
		for _, g := range c.Groups {
			if _, ok := cp.Groups[g]; !ok {
				return contentError(fmt.Errorf("missing %s copy for group %q", locale, g), "classes.yaml")
			}
		}
		for _, cls := range c.Classes {
			if _, ok := cp.Classes[cls.Slug]; !ok {
				return contentError(fmt.Errorf("missing %s copy for class %q", locale, cls.Slug), "classes.yaml")
			}
		}
	}
	return nil
}

// ClassSlugs returns every class slug in catalog order.
func (s *Store) ClassSlugs() []string {
	slugs := make([]string, len(s.catalog.Classes))
	for i, cls := range s.catalog.Classes {
		slugs[i] = cls.Slug
	}
	return slugs
}

// GroupSlugs returns every group slug in display order.
func (s *Store) GroupSlugs() []string {
	return append([]string(nil), s.catalog.Groups...)
}

// IsClassSlug reports whether slug names a class in the catalog.
func (s *Store) IsClassSlug(slug string) bool {
	_, ok := s.catalog.bySlug[slug]
	return ok
}

// LocalizedClass returns the class with slug in locale. The boolean is false
// for slugs outside the catalog.
func (s *Store) LocalizedClass(locale i18n.Locale, slug string) (Class, bool) {
	static, ok := s.catalog.bySlug[slug]
	if !ok {
		return Class{}, false
	}
	return s.buildClass(locale, static), true
}

// LocalizedClasses returns every class in locale, in catalog order.
func (s *Store) LocalizedClasses(locale i18n.Locale) []Class {
	classes := make([]Class, len(s.catalog.Classes))
	for i, static := range s.catalog.Classes {
		classes[i] = s.buildClass(locale, static)
	}
	return classes
}

// LocalizedClassGroups returns the class groups in display order, each with
// its classes in catalog order.
func (s *Store) LocalizedClassGroups(locale i18n.Locale) []ClassGroup {
	classes := s.LocalizedClasses(locale)
	cp := forLocale(s.catalog.Copy, locale)

	groups := make([]ClassGroup, 0, len(s.catalog.Groups))
	for _, slug := range s.catalog.Groups {
		group := ClassGroup{
			Slug:        slug,
			Title:       cp.Groups[slug].Title,
			Description: cp.Groups[slug].Description,
		}
		for _, c := range classes {
			if c.Group == slug {
				group.Classes = append(group.Classes, c)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// RelatedClasses returns up to limit other classes of the same group.
func (s *Store) RelatedClasses(locale i18n.Locale, slug string, limit int) []Class {
	static, ok := s.catalog.bySlug[slug]
	if !ok || limit <= 0 {
		return nil
	}
	var related []Class
	for _, other := range s.catalog.Classes {
		if other.Group != static.Group || other.Slug == slug {
			continue
		}
		related = append(related, s.buildClass(locale, other))
		if len(related) == limit {
			break
		}
	}
	return related
}

// ClassStreamEnvBase returns the environment variable stem of a class stream,
// e.g. HOT_POWER_FLOW.
func (s *Store) ClassStreamEnvBase(slug string) (string, bool) {
	static, ok := s.catalog.bySlug[slug]
	return static.Video.StreamEnvBase, ok
}

// ClassSourceVideoPath returns the path of the source recording a stream was uploaded from.
func (s *Store) ClassSourceVideoPath(slug string) (string, bool) {
	static, ok := s.catalog.bySlug[slug]
	return static.Video.Source, ok
}

func (s *Store) buildClass(locale i18n.Locale, static classStatic) Class {
	cp := forLocale(s.catalog.Copy, locale).Classes[static.Slug]
	streamID, iframe := s.resolveStream(static.Video)
	return Class{
		Slug:            static.Slug,
		Group:           static.Group,
		Title:           cp.Title,
		Subtitle:        cp.Subtitle,
		Description:     cp.Description,
		Benefits:        append([]string(nil), cp.Benefits...),
		DurationMinutes: static.DurationMinutes,
		Heat:            static.Heat,
		Intensity:       static.Intensity,
		Image:           static.Image,
		StreamID:        streamID,
		IframeSrc:       iframe,
		FallbackVideo:   static.Video.FallbackVideo,
	}
}

// resolveStream applies configured overrides, then builds the default iframe URL.
func (s *Store) resolveStream(video videoConfig) (streamID, iframe string) {
	cfg := s.StreamConfig()

	streamID = cfg.override(video.StreamEnvBase, "STREAM_ID")
	if streamID == "" {
		streamID = video.FallbackStreamID
	}
	if iframe = cfg.override(video.StreamEnvBase, "IFRAME_URL"); iframe != "" {
		return streamID, iframe
	}
	if streamID == "" {
		return "", ""
	}
	return streamID, StreamIframeURL(cfg.Host(), streamID)
}

// StreamIframeURL builds the muted, looping, control-less player URL for a stream.
func StreamIframeURL(host, streamID string) string {
	poster := fmt.Sprintf("https://%s/%s/thumbnails/thumbnail.jpg?time=&height=600", host, streamID)
	return fmt.Sprintf(
		"https://%s/%s/iframe?muted=true&preload=true&loop=true&autoplay=true&controls=false&poster=%s",
		host, streamID, url.QueryEscape(poster),
	)
}

// WithHiddenControls forces controls=false on Cloudflare Stream player URLs.
// Other URLs are returned unchanged.
func WithHiddenControls(src string) string {
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return hideControlsRaw(src)
	}
	if !strings.HasSuffix(u.Hostname(), streamHostSuffix) {
		return src
	}
	q := u.Query()
	q.Set("controls", "false")
	u.RawQuery = q.Encode()
	return u.String()
}

// hideControlsRaw handles strings url.Parse rejects.
func hideControlsRaw(src string) string {
	if !strings.Contains(src, "cloudflarestream.com") {
		return src
	}
	base, fragment, hasFragment := strings.Cut(src, "#")
	path, query, _ := strings.Cut(base, "?")
	params := strings.Split(query, "&")
	replaced := false
	for i, p := range params {
		if p == "controls" || strings.HasPrefix(p, "controls=") {
			params[i] = "controls=false"
			replaced = true
		}
	}
	if query == "" {
		params = nil
	}
	if !replaced {
		params = append(params, "controls=false")
	}
	out := path + "?" + strings.Join(params, "&")
	if hasFragment {
		out += "#" + fragment
	}
	return out
}
