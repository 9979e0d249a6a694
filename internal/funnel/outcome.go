package funnel

import "net/http"

// Response is the JSON body returned to the webhook sender.
type Response struct {
	OK            bool   `json:"ok"`
	Message       string `json:"message,omitempty"`
	Idempotent    bool   `json:"idempotent,omitempty"`
	Merged        bool   `json:"merged,omitempty"`
	WaitlistEntry bool   `json:"waitlistEntry,omitempty"`
	Ignored       bool   `json:"ignored,omitempty"`
}

// Outcome is the HTTP status and body of a handled webhook.
type Outcome struct {
	Status int
	Body   Response
}

// Label is the metrics and log label of the outcome.
func (o Outcome) Label() string {
	b := o.Body
	switch {
	case !b.OK && o.Status < http.StatusInternalServerError:
		return "rejected"
	case !b.OK:
		return "error"
	case b.Idempotent:
		return "idempotent"
	case b.Merged:
		return "merged"
	case b.WaitlistEntry:
		return "waitlist_entry"
	case b.Ignored:
		return "ignored"
	default:
		return "created"
	}
}

// Failure builds an error outcome.
func Failure(status int, message string) Outcome {
	return Outcome{Status: status, Body: Response{OK: false, Message: message}}
}

func created() Outcome      { return Outcome{Status: http.StatusOK, Body: Response{OK: true}} }
func idempotent() Outcome   { return Outcome{Status: http.StatusOK, Body: Response{OK: true, Idempotent: true}} }
func merged() Outcome       { return Outcome{Status: http.StatusOK, Body: Response{OK: true, Merged: true}} }
func entryCreated() Outcome { return Outcome{Status: http.StatusOK, Body: Response{OK: true, WaitlistEntry: true}} }
func ignored() Outcome      { return Outcome{Status: http.StatusOK, Body: Response{OK: true, Ignored: true}} }
