// Package emails prints the waitlist email sequence loaded into ConvertKit.
package emails

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

// Options selects the locale, token values and output format.
type Options struct {
	Locale       string
	Instagram    string
	ReferralLink string
	JSON         bool
}

// Command creates the emails command.
func Command(ctx *conf.Context) *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "emails [locale]",
		Short: "Print the waitlist email sequence for a locale",
		Long:  "Print the welcome, day 3 and day 7 emails with placeholders filled, ready to paste into ConvertKit.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Locale = string(i18n.DefaultLocale)
			if len(args) == 1 {
				opts.Locale = args[0]
			}
			return Run(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Instagram, "instagram", content.DefaultInstagramHandle, "Instagram handle inserted into the emails")
	cmd.Flags().StringVar(&opts.ReferralLink, "referral-link", content.DefaultReferralLink, "Referral link inserted into the emails")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON instead of text")

	return cmd
}

// Run renders the sequence to w.
func Run(w io.Writer, opts Options) error {
	locale := strings.ToLower(strings.TrimSpace(opts.Locale))
	if !i18n.IsLocale(locale) {
		return errors.Newf("unsupported locale %q, expected one of %v", opts.Locale, i18n.Locales).
			Component("emails").
			Category(errors.CategoryValidation).
			Build()
	}

	store, err := content.New()
	if err != nil {
		return err
	}
	sequence := store.EmailSequence(i18n.Locale(locale), content.EmailTokens{
		InstagramHandle: opts.Instagram,
		ReferralLink:    opts.ReferralLink,
	})

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sequence)
	}

	for i, email := range sequence {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s (day %d, %s)\nSubject: %s\n\n%s\n",
			email.InternalName, email.DayOffset, email.Step, email.Subject, email.Body); err != nil {
			return err
		}
	}
	return nil
}
