package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu       sync.Mutex
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestBuilderFields(t *testing.T) {
	ee := Newf("lookup %s", "abc").
		Component("datastore").
		Category(CategoryNotFound).
		Priority(PriorityLow).
		Priority("bogus").
		Context("code", "abc").
		Build()

	assert.Equal(t, "lookup abc", ee.Error())
	assert.Equal(t, "datastore", ee.Component)
	assert.Equal(t, PriorityLow, ee.Priority)
	assert.Equal(t, map[string]any{"code": "abc"}, ee.GetContext())
	assert.True(t, IsNotFound(ee))
	assert.False(t, IsConflict(ee))
}

func TestCategoryHelpersSeeThroughWrapping(t *testing.T) {
	base := New(NewStd("duplicate")).Category(CategoryConflict).Build()
	wrapped := fmt.Errorf("insert: %w", base)

	assert.True(t, IsConflict(wrapped))
	assert.True(t, Is(wrapped, &EnhancedError{Category: CategoryConflict}))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsCategory(NewStd("plain"), CategoryConflict))
}

func TestUnwrapReturnsOriginal(t *testing.T) {
	sentinel := NewStd("sentinel")
	ee := New(sentinel).Build()

	require.ErrorIs(t, ee, sentinel)
	assert.Equal(t, sentinel, Unwrap(ee))
}

func TestTelemetryReporterReceivesBuiltErrors(t *testing.T) {
	reporter := &recordingReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := ValidationError("bad input")

	require.Len(t, reporter.reported, 1)
	assert.Same(t, ee, reporter.reported[0])
	assert.True(t, ee.IsReported())
}

func TestScrubMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		absent  []string
		present []string
	}{
		{
			name:    "query string",
			input:   "POST https://api.convertkit.com/v3/forms/1/subscribe?api_key=secret failed",
			absent:  []string{"secret"},
			present: []string{"https://api.convertkit.com/v3/forms/1/subscribe?[REDACTED]"},
		},
		{
			name:    "email",
			input:   "duplicate entry for jane.doe@example.com",
			absent:  []string{"jane.doe@example.com"},
			present: []string{"[EMAIL_REDACTED]"},
		},
		{
			name:    "webhook secret",
			input:   "bad secret whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw",
			absent:  []string{"MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"},
			present: []string{"[SECRET_REDACTED]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScrubMessage(tt.input)
			for _, s := range tt.absent {
				assert.NotContains(t, got, s)
			}
			for _, s := range tt.present {
				assert.Contains(t, got, s)
			}
		})
	}
}
