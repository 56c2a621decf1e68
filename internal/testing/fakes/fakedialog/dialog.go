// Package fakedialog provides a test fake for ports.DialogProvider.
package fakedialog

import "github.com/acolita/slot-clock/internal/ports"

// Provider is a controllable fake DialogProvider for testing.
type Provider struct {
	// Result is the form data returned by ClockConfigForm.
	Result ports.ClockFormData
	// Err is the error returned by ClockConfigForm.
	Err error
	// Called tracks whether ClockConfigForm was invoked.
	Called bool
	// ReceivedPrefill captures the prefill data passed to ClockConfigForm.
	ReceivedPrefill ports.ClockFormData
}

// New returns a new fake dialog provider.
func New() *Provider {
	return &Provider{}
}

// ClockConfigForm returns the pre-configured Result and Err.
func (p *Provider) ClockConfigForm(prefill ports.ClockFormData) (ports.ClockFormData, error) {
	p.Called = true
	p.ReceivedPrefill = prefill
	if p.Err != nil {
		return prefill, p.Err
	}
	return p.Result, nil
}

// Ensure Provider implements ports.DialogProvider.
var _ ports.DialogProvider = (*Provider)(nil)
