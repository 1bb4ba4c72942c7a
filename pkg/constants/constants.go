package constants

// DefaultDecimals is the mint decimal count for curve-launched tokens.
const DefaultDecimals = 6

// BasisPointsDenominator converts basis points to a fraction (10000 = 100%).
const BasisPointsDenominator = 10000

// Record key seeds. Records are stored under seed-prefixed keys, mirroring
// the PDA derivation of the reference deployment.
const (
	SeedGlobal       = "global"
	SeedBondingCurve = "bonding-curve"
	SeedUserTransfer = "user"
)

// Default launch parameters used to seed the global config at initialization.
// Values match the reference deployment.
const (
	DefaultInitialVirtualTokenReserves uint64 = 1_073_000_000_000_000
	DefaultInitialVirtualSolReserves   uint64 = 30_000_000_000
	DefaultInitialRealTokenReserves    uint64 = 793_100_000_000_000
	DefaultInitialTokenSupply          uint64 = 1_000_000_000_000_000
	DefaultFeeBasisPoints              uint64 = 50
)

// Creator trading throttle. The curve creator's tradable amount ramps
// linearly from zero to CreatorTransferCapBps of total supply over
// CreatorThrottleWindow seconds since their previous trade on the mint.
const (
	CreatorThrottleWindow int64  = 3600
	CreatorTransferCapBps uint64 = 50
)

// MinCurveLamports is the native balance a completed curve retains after
// withdraw: the rent-exempt floor for the 49-byte curve record.
const MinCurveLamports uint64 = 1_231_920

// Metadata length limits for curve-launched tokens.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
)
