// Package realdialog provides a TUI-based DialogProvider using charmbracelet/huh.
package realdialog

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/acolita/slot-clock/internal/ports"
)

// Provider implements ports.DialogProvider with a form in the current terminal.
type Provider struct{}

// New returns a new TUI dialog provider.
func New() *Provider {
	return &Provider{}
}

// ClockConfigForm shows the setup form prefilled with prefill.
func (p *Provider) ClockConfigForm(prefill ports.ClockFormData) (ports.ClockFormData, error) {
	result := prefill
	offsetStr := strconv.Itoa(prefill.UTCOffsetHours)
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("NTP Server").
				Description("host:port of the time server (e.g., 'es.pool.ntp.org:123')").
				Validate(validateServer).
				Value(&result.Server),

			huh.NewInput().
				Title("UTC Offset").
				Description("Whole hours from UTC, -12 to +14").
				Validate(validateOffset).
				Value(&offsetStr),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Resync Interval").
				Description("How often to resynchronize (e.g., '1h', '30m')").
				Validate(validateInterval).
				Value(&result.ResyncInterval),

			huh.NewSelect[string]().
				Title("Resync Mode").
				Options(
					huh.NewOption("Silent", "silent"),
					huh.NewOption("Animated", "animated"),
				).
				Value(&result.ResyncMode),

			huh.NewSelect[string]().
				Title("Display").
				Options(
					huh.NewOption("Single line on stdout", "stdout"),
					huh.NewOption("Full screen", "tcell"),
				).
				Value(&result.Device),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this clock configuration?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return prefill, err
	}

	offset, err := parseOffset(offsetStr)
	if err != nil {
		offset = prefill.UTCOffsetHours
	}
	result.UTCOffsetHours = offset
	result.Confirmed = confirmed

	return result, nil
}

func parseOffset(s string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "+"))
}

func validateOffset(s string) error {
	h, err := parseOffset(s)
	if err != nil {
		return errors.New("offset must be a whole number of hours")
	}
	if h < -12 || h > 14 {
		return errors.New("offset must be between -12 and +14")
	}
	return nil
}

func validateServer(s string) error {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("server must be host:port")
	}
	if host == "" || port == "" {
		return errors.New("server must be host:port")
	}
	return nil
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("interval must be a duration such as 1h")
	}
	if d <= 0 {
		return errors.New("interval must be positive")
	}
	return nil
}

// Ensure Provider implements ports.DialogProvider.
var _ ports.DialogProvider = (*Provider)(nil)
