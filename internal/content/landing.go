package content

import (
	"strconv"
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

// Section anchors on the home page.
const (
	SectionHero         = "hero"
	SectionConcept      = "concept"
	SectionYerevanStory = "yerevan-story"
	SectionFounder      = "founder"
	SectionPricing      = "pricing"
	SectionSocialProof  = "social-proof"
	SectionWaitlist     = "waitlist"
)

// SectionIDs lists the home page sections in page order.
var SectionIDs = []string{
	SectionHero, SectionConcept, SectionYerevanStory, SectionFounder,
	SectionPricing, SectionSocialProof, SectionWaitlist,
}

// Landing is the home page copy of one locale.
type Landing struct {
	SiteName        string   `yaml:"site_name"`
	CityLabel       string   `yaml:"city_label"`
	Badge           string   `yaml:"badge"`
	MetaTitle       string   `yaml:"meta_title"`
	MetaDescription string   `yaml:"meta_description"`
	OGTitle         string   `yaml:"og_title"`
	OGDescription   string   `yaml:"og_description"`
	OGImage         string   `yaml:"og_image"`
	Keywords        []string `yaml:"keywords"`

	HeroHeadline    string `yaml:"hero_headline"`
	HeroSubheadline string `yaml:"hero_subheadline"`
	HeroCTA         string `yaml:"hero_cta"`

	ClassFormatsBadge     string `yaml:"class_formats_badge"`
	ConceptTitle          string `yaml:"concept_title"`
	ConceptIntro          string `yaml:"concept_intro"`
	ConceptStoryParagraph string `yaml:"concept_story_paragraph"`
	ViewAllClassesLabel   string `yaml:"view_all_classes_label"`

	YerevanBadge string `yaml:"yerevan_badge"`
	YerevanTitle string `yaml:"yerevan_title"`
	YerevanBody  string `yaml:"yerevan_body"`
	YerevanStats []Stat `yaml:"yerevan_stats"`

	FounderBadge       string   `yaml:"founder_badge"`
	FounderTitle       string   `yaml:"founder_title"`
	FounderName        string   `yaml:"founder_name"`
	FounderBio         string   `yaml:"founder_bio"`
	FounderQuote       string   `yaml:"founder_quote"`
	FounderCredentials []string `yaml:"founder_credentials"`

	PricingBadge  string        `yaml:"pricing_badge"`
	PricingTitle  string        `yaml:"pricing_title"`
	PricingLabels PricingLabels `yaml:"pricing_labels"`
	PricingTiers  []PricingTier `yaml:"pricing_tiers"`

	SocialBadge  string        `yaml:"social_badge"`
	SocialTitle  string        `yaml:"social_title"`
	Testimonials []Testimonial `yaml:"testimonials"`

	WaitlistBadge        string `yaml:"waitlist_badge"`
	WaitlistTitle        string `yaml:"waitlist_title"`
	WaitlistSubtitle     string `yaml:"waitlist_subtitle"`
	WaitlistCounterLabel string `yaml:"waitlist_counter_label"`
	SpotsRemainingLabel  string `yaml:"spots_remaining_label"`
	SkipToWaitlistLabel  string `yaml:"skip_to_waitlist_label"`

	FooterTagline   string `yaml:"footer_tagline"`
	InstagramHandle string `yaml:"instagram_handle"`

	NavLabels             NavLabels         `yaml:"nav_labels"`
	LanguageSelectorLabel string            `yaml:"language_selector_label"`
	LanguageNames         map[string]string `yaml:"language_names"`
}

// Stat is a highlighted number with a caption.
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// PricingLabels are the captions of a pricing card.
type PricingLabels struct {
	RegularPrice string `yaml:"regular_price"`
	Commitment   string `yaml:"commitment"`
	Perks        string `yaml:"perks"`
	Featured     string `yaml:"featured"`
}

// PricingTier is one founding-member offer.
type PricingTier struct {
	Name         string `yaml:"name"`
	Price        string `yaml:"price"`
	RegularPrice string `yaml:"regular_price"`
	Commitment   string `yaml:"commitment"`
	Perks        string `yaml:"perks"`
	CTA          string `yaml:"cta"`
	Featured     bool   `yaml:"featured"`
}

// Testimonial is a quote from a pop-up attendee.
type Testimonial struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
}

// NavLabels are the navigation link captions.
type NavLabels struct {
	Offer    string `yaml:"offer"`
	Story    string `yaml:"story"`
	Founder  string `yaml:"founder"`
	Pricing  string `yaml:"pricing"`
	Waitlist string `yaml:"waitlist"`
	Classes  string `yaml:"classes"`
	Privacy  string `yaml:"privacy"`
	Terms    string `yaml:"terms"`
}

// PageLabels are the captions of the class and legal pages.
type PageLabels struct {
	ClassesTitle           string `yaml:"classes_title"`
	ClassesDescription     string `yaml:"classes_description"`
	BackToHome             string `yaml:"back_to_home"`
	Duration               string `yaml:"duration"`
	ClassDescriptionSuffix string `yaml:"class_description_suffix"`
	BackToClasses          string `yaml:"back_to_classes"`
	Benefits               string `yaml:"benefits"`
	RelatedClasses         string `yaml:"related_classes"`
	FactDuration           string `yaml:"fact_duration"`
	FactIntensity          string `yaml:"fact_intensity"`
	FactHeat               string `yaml:"fact_heat"`
	Home                   string `yaml:"home"`
}

// NotFoundCopy is the copy of the 404 page, which is not localized.
type NotFoundCopy struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	LinkLabel   string `yaml:"link_label"`
}

// Landing returns the home page copy for locale.
func (s *Store) Landing(locale i18n.Locale) Landing {
	return forLocale(s.landing, locale)
}

// PageLabels returns the class and legal page captions for locale.
func (s *Store) PageLabels(locale i18n.Locale) PageLabels {
	return forLocale(s.pages, locale)
}

// NotFound returns the 404 page copy.
func (s *Store) NotFound() NotFoundCopy {
	return s.notFound
}

// FormatDuration renders a duration label such as "60 min".
func (p PageLabels) FormatDuration(minutes int) string {
	return strings.ReplaceAll(p.Duration, "{n}", strconv.Itoa(minutes))
}

// ClassFacts renders the duration, intensity and heat lines of a class.
func (p PageLabels) ClassFacts(c Class) []string {
	return []string{
		strings.ReplaceAll(p.FactDuration, "{n}", strconv.Itoa(c.DurationMinutes)),
		strings.ReplaceAll(p.FactIntensity, "{value}", c.Intensity),
		strings.ReplaceAll(p.FactHeat, "{value}", c.Heat),
	}
}
