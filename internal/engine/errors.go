package engine

import (
	"errors"

	"github.com/raysh454/rawdata/internal/model"
)

var (
	// ErrRestrictedPage is returned for browser-internal surfaces that cannot
	// be scanned. It is not retried.
	ErrRestrictedPage = errors.New("cannot scan browser system pages")
	// ErrChannelDetached is returned by a Target whose capture channel is not
	// attached to the document yet. The scanner re-attaches once and retries.
	ErrChannelDetached = errors.New("capture channel not attached")
	// ErrScanInProgress is returned when a scan is already running on the
	// same document context.
	ErrScanInProgress = errors.New("scan already in progress")
	ErrInvalidMode    = model.ErrInvalidMode
)
