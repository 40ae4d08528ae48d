package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned for a scan mode outside quick, full and deep.
var ErrInvalidMode = errors.New("invalid scan mode")

// Mode selects how much a scan collects.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeFull  Mode = "full"
	ModeDeep  Mode = "deep"
)

// ParseMode validates s as a Mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeQuick, ModeFull, ModeDeep:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// IncludesContent reports whether the mode collects page content.
func (m Mode) IncludesContent() bool { return m == ModeFull || m == ModeDeep }

// IncludesDeep reports whether the mode runs site-specific scanners.
func (m Mode) IncludesDeep() bool { return m == ModeDeep }

// ScanType is the value reported in Meta.ScanType.
func (m Mode) ScanType(pdf bool) string {
	if pdf {
		return string(m) + "_pdf"
	}
	return string(m)
}
