package sale

const (
	// foundationAdmin is the only identity allowed to run administrative
	// operations on the sale and allocation state.
	foundationAdmin = "4f1b9a2c7e8d3f60a5b4c1d2e3f4a5b6c7d8e9f0"

	// Cohort caps in whole tokens. Together with the crowdsale hard cap
	// they account for the entire fixed supply; the bonus pool is carved
	// out of the foundation final share rather than adding to it.
	hardCapTokens            = 400000000
	bonusPoolCapTokens       = 130000000
	teamCapTokens            = 150000000
	advisorsCapTokens        = 60000000
	foundationPreCapTokens   = 90000000
	foundationFinalCapTokens = 300000000

	// Team tokens unlock in equal tranches. The first tranche becomes
	// claimable three tranche periods after the release epoch, then one
	// more per elapsed period.
	maxTranches           = 12
	tranchePeriodSeconds  = 30 * 24 * 60 * 60
	firstTranchePeriods   = 3
	advisorDelaySeconds   = 180 * 24 * 60 * 60
	defaultConversionRate = 10000

	saleConfigKey     = "sale_config"
	conversionRateKey = "conversion_rate"
	tokenContractKey  = "token_contract"
	trancheStateKey   = "tranche_state"
	advisorConfigKey  = "advisor_config"

	totalAllocatedKey    = "total_allocated"
	totalSoldKey         = "total_sold"
	bonusDistributedKey  = "bonus_distributed"
	teamAllocatedKey     = "team_allocated"
	advisorsAllocatedKey = "advisors_allocated"
	foundationPreKey     = "foundation_preallocated"
	foundationFinalKey   = "foundation_finalized"

	whitelistKeyPrefix = "whitelist_"

	contributionEvent       = "Contribution"
	paymentForwardedEvent   = "PaymentForwarded"
	teamTrancheEvent        = "TeamTrancheReleased"
	advisorsReleasedEvent   = "AdvisorsReleased"
	foundationPreEvent      = "FoundationPreAllocated"
	foundationFinalEvent    = "FoundationFinalized"
	conversionRateEvent     = "ConversionRateChanged"
	whitelistAddedEvent     = "WhitelistAdded"
	whitelistRemovedEvent   = "WhitelistRemoved"
	advisorsConfiguredEvent = "AdvisorsConfigured"
	tokenContractSetEvent   = "SetTokenContract"
)

// Bonus tier schedule: cumulative-sold ceilings in whole tokens with the
// bonus percentage earned by contribution slices below each ceiling.
var bonusTierCeilingsTokens = [5]uint64{40000000, 100000000, 180000000, 280000000, 400000000}
var bonusTierPercents = [5]uint64{35, 30, 25, 20, 10}

// Bulk bonus: flat percentage by single-purchase size, zero below the
// smallest floor.
var bulkBonusFloorsTokens = [3]uint64{20000000, 10000000, 5000000}
var bulkBonusPercents = [3]uint64{15, 10, 5}
