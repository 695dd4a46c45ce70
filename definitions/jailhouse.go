package defs

// Fixed column widths of the `jailhouse cell list` table. The tool prints a
// single header line followed by one data row per cell; every row is sliced
// at these offsets, there is no delimiter.
const (
	IDWidth    = 8
	NameWidth  = 24
	StateWidth = 16
	CPUWidth   = 24

	RowWidth = IDWidth + NameWidth + StateWidth + 2*CPUWidth
)

// State column literals, padded to StateWidth. Any other value is treated as
// an unknown state rather than a parse failure so that newer tool versions
// can still be enumerated.
const (
	StateRunningString       = "running         "
	StateRunningLockedString = "running/locked  "
	StateShutdownString      = "shut down       "
	StateFailedString        = "failed          "
)

// VersionBanner is the prefix `jailhouse --version` must print for the
// binary to be accepted at connect time.
const VersionBanner = "Jailhouse management tool"

// DefaultBinary is resolved on PATH when neither the URI nor the config
// names a tool binary.
const DefaultBinary = "jailhouse"

// URIScheme is the connection scheme this driver claims.
const URIScheme = "jailhouse"

// InactiveDomainID marks a domain handle whose cell is not running.
const InactiveDomainID = -1
