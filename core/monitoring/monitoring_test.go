package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordMonitor struct {
	errs    []error
	tags    map[string]string
	panics  []any
	flushed bool
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(v any)  { r.panics = append(r.panics, v) }
func (r *recordMonitor) Flush(time.Duration) { r.flushed = true }

func TestCaptureException(t *testing.T) {
	m := &recordMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"module": "store"})
	assert.Len(t, m.errs, 1)
	assert.Equal(t, "store", m.tags["module"])

	Init(nil)
	CaptureException(errors.New("again"), nil)
	assert.Len(t, m.errs, 2)
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	m := &recordMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	assert.PanicsWithValue(t, "kaboom", func() {
		defer Recover()
		panic("kaboom")
	})
	assert.Equal(t, []any{"kaboom"}, m.panics)
	assert.True(t, m.flushed)
}
