package token

const (
	// foundationAdmin is the only identity allowed to run administrative
	// operations on the ledger and the transfer gate.
	foundationAdmin = "4f1b9a2c7e8d3f60a5b4c1d2e3f4a5b6c7d8e9f0"

	tokenName     = "Meridian"
	tokenSymbol   = "MRD"
	tokenDecimals = 18

	// totalSupplyTokens is the fixed supply in whole tokens; the full amount
	// is minted to the supply pool at initialization and never changes.
	totalSupplyTokens = 1000000000

	// zeroAddress is the from-address of issuance records: credits drawn
	// from the supply pool are reported as null-origin transfers.
	zeroAddress = "0000000000000000000000000000000000000000"

	// supplyPool holds the unallocated portion of the fixed supply.
	supplyPool = "0000000000000000000000000000000000000001"

	metadataKey = "token_metadata"
	gateKey     = "transfer_gate"

	balanceKeyPrefix     = "balance_"
	allowanceKeyPrefix   = "allowance_"
	lockKeyPrefix        = "locked_"
	saleAccountKeyPrefix = "saleaccount_"

	transferEvent             = "Transfer"
	approvalEvent             = "Approval"
	earlyReleaseEnabledEvent  = "EarlyReleaseEnabled"
	publicReleaseEnabledEvent = "PublicReleaseEnabled"
	accountLockedEvent        = "AccountLocked"
	accountUnlockedEvent      = "AccountUnlocked"
	saleAccountAddedEvent     = "SaleAccountRegistered"

	hexAddressRegex = `^[0-9a-fA-F]{40}$`
)
