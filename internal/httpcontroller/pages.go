package httpcontroller

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/seo"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// relatedClassLimit caps the "more in this format" list on class pages.
const relatedClassLimit = 3

// PageData is passed to every page template.
type PageData struct {
	Locale  i18n.Locale
	Path    string // locale-less path, "" for the home page
	Meta    seo.PageMeta
	JSONLD  template.JS
	Landing content.Landing
	Labels  content.PageLabels
	Year    int

	// Home page.
	Groups         []content.ClassGroup
	Stats          waitlist.Stats
	Clerk          content.ClerkLocalization
	ClerkKey       string
	ReferralCode   string
	TrackAnalytics bool

	// Class pages.
	Class   *content.Class
	Group   *content.ClassGroup
	Facts   []string
	Related []content.Class

	// Legal pages.
	Legal *content.LegalDocument

	NotFound content.NotFoundCopy
}

// newPageData fills the fields shared by every page.
func (s *Server) newPageData(locale i18n.Locale, path string, in seo.PageInput) PageData {
	in.BaseURL = s.Settings.Main.SiteURL
	in.Locale = locale
	in.Path = path
	return PageData{
		Locale:  locale,
		Path:    path,
		Meta:    seo.NewPageMeta(in),
		Landing: s.Content.Landing(locale),
		Labels:  s.Content.PageLabels(locale),
		Year:    s.now().Year(),
	}
}

// render writes a page, attaching JSON-LD when schemas are given.
func (s *Server) render(c echo.Context, status int, page string, data PageData, schemas ...seo.Schema) error {
	if len(schemas) > 0 {
		ld, err := seo.JSONLD(schemas...)
		if err != nil {
			return errors.New(err).Component("http").Category(errors.CategoryGeneric).Context("page", page).Build()
		}
		data.JSONLD = ld
	}
	return c.Render(status, page, data)
}

// pageLocale returns the :locale route parameter.
func pageLocale(c echo.Context) (i18n.Locale, error) {
	locale := c.Param("locale")
	if !i18n.IsLocale(locale) {
		return "", echo.ErrNotFound
	}
	return i18n.Locale(locale), nil
}

// baseURL is the canonical site URL.
func (s *Server) baseURL() string {
	return seo.NormalizeBaseURL(s.Settings.Main.SiteURL)
}

// homePage handles GET /:locale.
func (s *Server) homePage(c echo.Context) error {
	locale, err := pageLocale(c)
	if err != nil {
		return err
	}
	landing := s.Content.Landing(locale)

	data := s.newPageData(locale, "", seo.PageInput{
		Title:       landing.MetaTitle,
		Description: landing.MetaDescription,
		Keywords:    landing.Keywords,
		OGTitle:     landing.OGTitle,
		OGDesc:      landing.OGDescription,
		Image:       landing.OGImage,
	})
	data.Groups = s.Content.LocalizedClassGroups(locale)
	data.Stats = s.Stats.Stats(c.Request().Context())
	data.Clerk = s.Content.ClerkLocalization(locale)
	data.ClerkKey = s.Settings.Clerk.PublishableKey
	data.ReferralCode, _ = s.Jar.Referral(c.Request())
	data.TrackAnalytics = true

	schemas := seo.HomepageStructuredData(locale, s.baseURL(), landing.MetaDescription, data.Groups)
	return s.render(c, http.StatusOK, "home", data, schemas...)
}

// classesPage handles GET /:locale/classes.
func (s *Server) classesPage(c echo.Context) error {
	locale, err := pageLocale(c)
	if err != nil {
		return err
	}
	labels := s.Content.PageLabels(locale)
	landing := s.Content.Landing(locale)

	data := s.newPageData(locale, "/classes", seo.PageInput{
		Title:       labels.ClassesTitle + " | " + seo.BusinessName,
		Description: labels.ClassesDescription,
	})
	data.Groups = s.Content.LocalizedClassGroups(locale)

	base := s.baseURL()
	return s.render(c, http.StatusOK, "classes", data,
		seo.ClassGroupItemList(locale, base, data.Groups),
		seo.Breadcrumb([]seo.BreadcrumbItem{
			{Name: landing.SiteName, URL: seo.LocalizedURL(base, locale, "")},
			{Name: landing.NavLabels.Classes, URL: seo.LocalizedURL(base, locale, "/classes")},
		}))
}

// classPage handles GET /:locale/classes/:slug.
func (s *Server) classPage(c echo.Context) error {
	locale, err := pageLocale(c)
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	class, ok := s.Content.LocalizedClass(locale, slug)
	if !ok {
		return echo.ErrNotFound
	}
	labels := s.Content.PageLabels(locale)
	landing := s.Content.Landing(locale)
	path := "/classes/" + class.Slug

	title := class.Title + " | " + seo.BusinessName
	data := s.newPageData(locale, path, seo.PageInput{
		Title:       title,
		Description: class.Description + " " + labels.ClassDescriptionSuffix,
		OGType:      "article",
		Image:       class.Image,
		ImageAlt:    class.Title,
	})
	data.Class = &class
	data.Facts = labels.ClassFacts(class)
	data.Related = s.Content.RelatedClasses(locale, class.Slug, relatedClassLimit)
	for _, g := range s.Content.LocalizedClassGroups(locale) {
		if g.Slug == class.Group {
			data.Group = &g
			break
		}
	}

	base := s.baseURL()
	schemas := seo.ClassStructuredData(locale, base, class, s.Content.StreamConfig().Host())
	schemas = append(schemas, seo.Breadcrumb([]seo.BreadcrumbItem{
		{Name: landing.SiteName, URL: seo.LocalizedURL(base, locale, "")},
		{Name: landing.NavLabels.Classes, URL: seo.LocalizedURL(base, locale, "/classes")},
		{Name: class.Title, URL: seo.LocalizedURL(base, locale, path)},
	}))
	return s.render(c, http.StatusOK, "class", data, schemas...)
}

// privacyPage handles GET /:locale/privacy.
func (s *Server) privacyPage(c echo.Context) error {
	locale, err := pageLocale(c)
	if err != nil {
		return err
	}
	doc := s.Content.Legal(locale).Privacy
	return s.legalPage(c, locale, "/privacy", doc)
}

// termsPage handles GET /:locale/terms.
func (s *Server) termsPage(c echo.Context) error {
	locale, err := pageLocale(c)
	if err != nil {
		return err
	}
	doc := s.Content.Legal(locale).Terms
	return s.legalPage(c, locale, "/terms", doc)
}

func (s *Server) legalPage(c echo.Context, locale i18n.Locale, path string, doc content.LegalDocument) error {
	title := doc.Title + " | " + seo.BusinessName
	description := doc.Summary()
	data := s.newPageData(locale, path, seo.PageInput{
		Title:       title,
		Description: description,
	})
	data.Legal = &doc
	return s.render(c, http.StatusOK, "legal", data,
		seo.LegalPage(locale, doc.Title, description, data.Meta.Canonical))
}

// sitemap handles GET /sitemap.xml.
func (s *Server) sitemap(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	_, err := seo.BuildSitemap(s.baseURL(), s.Content.ClassSlugs(), s.now()).WriteTo(c.Response())
	return err
}

// robots handles GET /robots.txt.
func (s *Server) robots(c echo.Context) error {
	return c.String(http.StatusOK, seo.RobotsTxt(s.baseURL()))
}

// notFoundPage renders the 404 page in the locale of the path, if any.
func (s *Server) notFoundPage(c echo.Context) error {
	locale, ok := i18n.PathLocale(c.Request().URL.Path)
	if !ok {
		locale = i18n.DefaultLocale
	}
	nf := s.Content.NotFound()
	data := s.newPageData(locale, "", seo.PageInput{
		Title:       nf.Title,
		Description: nf.Description,
	})
	data.Meta.NoIndex = true
	data.NotFound = nf
	return s.render(c, http.StatusNotFound, "notfound", data)
}

// errorHandler renders HTML error pages for page routes and leaves API
// routes to echo's JSON error handler.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	p := c.Request().URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		s.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	log := s.log.WithContext(c.Request().Context())
	if code == http.StatusNotFound {
		if renderErr := s.notFoundPage(c); renderErr != nil {
			log.Error("failed to render not found page", logger.Error(renderErr))
			s.Echo.DefaultHTTPErrorHandler(err, c)
		}
		return
	}

	if code >= http.StatusInternalServerError {
		log.Error("page request failed",
			logger.Error(err),
			logger.String("path", p),
			logger.Int("status", code))
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.String(code, http.StatusText(code))
}
